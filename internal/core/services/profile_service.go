package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

type ProfileService struct {
	repo      domain.StudentRepository
	publisher domain.ChangePublisher
}

func NewProfileService(repo domain.StudentRepository, publisher domain.ChangePublisher) *ProfileService {
	return &ProfileService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Student, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID string, profile domain.Profile) (*domain.Student, error) {
	student, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	student.UpdateProfile(profile)
	return s.save(ctx, student)
}

// SetSemester stores the baseline window. A nil window clears it.
func (s *ProfileService) SetSemester(ctx context.Context, userID string, window *domain.SemesterWindow) (*domain.Student, error) {
	student, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := student.SetSemester(window); err != nil {
		return nil, err
	}
	return s.save(ctx, student)
}

func (s *ProfileService) save(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("profile service: failed to update student: %w", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(domain.ChangeEvent{
			UserID: student.ID,
			Kind:   domain.EventProfileUpdated,
			At:     time.Now().UTC(),
		})
	}
	return student, nil
}
