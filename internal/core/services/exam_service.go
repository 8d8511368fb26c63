package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

type ExamService struct {
	repo      domain.ExamRepository
	publisher domain.ChangePublisher
	clock     Clock
}

func NewExamService(repo domain.ExamRepository, publisher domain.ChangePublisher, clock Clock) *ExamService {
	return &ExamService{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
	}
}

type CreateExamInput struct {
	UserID      string
	Title       string
	Subject     string
	Kind        domain.ExamKind
	Date        string
	Description string
}

func (s *ExamService) Create(ctx context.Context, input CreateExamInput) (*domain.Exam, error) {
	exam, err := domain.NewExam(input.UserID, input.Title, input.Subject, input.Kind, input.Date, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("exam service: failed to create exam: %w", err)
	}

	s.notify(input.UserID)
	return exam, nil
}

// Schedule splits the student's exams into upcoming and past, each with the
// days left and an urgency bucket.
func (s *ExamService) Schedule(ctx context.Context, userID string) (*domain.ExamSchedule, error) {
	exams, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	schedule := domain.BuildExamSchedule(exams, s.clock.Today())
	return &schedule, nil
}

func (s *ExamService) Delete(ctx context.Context, id, userID string) error {
	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exam.UserID != userID {
		return domain.ErrExamNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(userID)
	return nil
}

func (s *ExamService) notify(userID string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.ChangeEvent{
		UserID: userID,
		Kind:   domain.EventExamsUpdated,
		At:     time.Now().UTC(),
	})
}
