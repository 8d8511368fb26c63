package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

type AttendanceService struct {
	repo      domain.AttendanceRepository
	publisher domain.ChangePublisher
	clock     Clock
}

func NewAttendanceService(repo domain.AttendanceRepository, publisher domain.ChangePublisher, clock Clock) *AttendanceService {
	return &AttendanceService{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
	}
}

// UpdateAttendanceInput carries a partial edit. Nil fields keep the stored value.
type UpdateAttendanceInput struct {
	UserID       string
	Date         string
	TotalClasses *int
	Status       *domain.AttendanceStatus
	LeaveCounted *bool
	Remark       *string
	ProofURL     *string
	ProofName    *string
	Version      int
}

func (s *AttendanceService) Save(ctx context.Context, userID string, input domain.AttendanceInput) (*domain.AttendanceDay, error) {
	day := domain.NewAttendanceDay(userID, input)

	if err := day.Validate(s.clock.Today()); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, day); err != nil {
		return nil, fmt.Errorf("attendance service: failed to save %s: %w", day.Date, err)
	}

	s.notify(userID, day.Date)
	return day, nil
}

func (s *AttendanceService) Update(ctx context.Context, input UpdateAttendanceInput) (*domain.AttendanceDay, error) {
	existing, err := s.repo.GetByDate(ctx, input.UserID, domain.ClampISODate(input.Date))
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrAttendanceConflict, input.Version, existing.Version)
	}

	merged := existing.Input()
	if input.TotalClasses != nil {
		merged.TotalClasses = *input.TotalClasses
	}
	if input.Status != nil {
		merged.Status = *input.Status
	}
	if input.LeaveCounted != nil {
		merged.LeaveCounted = *input.LeaveCounted
	}
	if input.Remark != nil {
		merged.Remark = *input.Remark
	}
	if input.ProofURL != nil {
		merged.ProofURL = *input.ProofURL
	}
	if input.ProofName != nil {
		merged.ProofName = *input.ProofName
	}

	if input.Version <= 0 {
		return s.Save(ctx, input.UserID, merged)
	}

	// The read above only fails fast. The conditional write is what stops
	// two editors holding the same version from both landing.
	day := domain.NewAttendanceDay(input.UserID, merged)
	if err := day.Validate(s.clock.Today()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateIfVersion(ctx, day, input.Version); err != nil {
		if errors.Is(err, domain.ErrAttendanceConflict) {
			return nil, fmt.Errorf("%w: client v%d is no longer current", err, input.Version)
		}
		return nil, fmt.Errorf("attendance service: failed to update %s: %w", day.Date, err)
	}

	s.notify(input.UserID, day.Date)
	return day, nil
}

func (s *AttendanceService) Delete(ctx context.Context, userID, date string) error {
	date = domain.ClampISODate(date)
	if err := s.repo.Delete(ctx, userID, date); err != nil {
		return err
	}

	s.notify(userID, date)
	return nil
}

func (s *AttendanceService) List(ctx context.Context, userID string) ([]domain.AttendanceDay, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// ListInRange falls back to the whole history when either bound is missing.
func (s *AttendanceService) ListInRange(ctx context.Context, userID, from, to string) ([]domain.AttendanceDay, error) {
	from, to = domain.ClampISODate(from), domain.ClampISODate(to)
	if from == "" || to == "" {
		return s.repo.ListByUserID(ctx, userID)
	}
	return s.repo.ListInRange(ctx, userID, from, to)
}

func (s *AttendanceService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]domain.AttendanceDay, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

// Reports lists days carrying a remark or proof, newest first.
func (s *AttendanceService) Reports(ctx context.Context, userID string) ([]domain.AttendanceDay, error) {
	days, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reports := make([]domain.AttendanceDay, 0)
	for _, d := range days {
		if d.HasReport() {
			reports = append(reports, d)
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Date > reports[j].Date
	})
	return reports, nil
}

func (s *AttendanceService) notify(userID, date string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.ChangeEvent{
		UserID: userID,
		Kind:   domain.EventAttendanceUpdated,
		Date:   date,
		At:     time.Now().UTC(),
	})
}
