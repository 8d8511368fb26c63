package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

type TaskService struct {
	repo      domain.TaskRepository
	publisher domain.ChangePublisher
	clock     Clock
}

func NewTaskService(repo domain.TaskRepository, publisher domain.ChangePublisher, clock Clock) *TaskService {
	return &TaskService{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
	}
}

type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	Priority    domain.TaskPriority
	DueDate     string
}

// TaskView is a task with its state resolved against the student's today.
type TaskView struct {
	domain.Task
	State    domain.TaskState `json:"state"`
	DaysLeft *int             `json:"days_left,omitempty"`
}

func (s *TaskService) view(t domain.Task, today string) TaskView {
	v := TaskView{Task: t, State: t.State(today)}
	if days, ok := t.DaysLeft(today); ok {
		v.DaysLeft = &days
	}
	return v
}

func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*TaskView, error) {
	task, err := domain.NewTask(input.UserID, input.Title, input.Description, input.Priority, input.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("task service: failed to create task: %w", err)
	}

	s.notify(input.UserID)
	v := s.view(*task, s.clock.Today())
	return &v, nil
}

type ListTasksQuery struct {
	UserID string
	Filter domain.TaskFilter
	Sort   domain.TaskSort
}

func (s *TaskService) List(ctx context.Context, q ListTasksQuery) ([]TaskView, error) {
	tasks, err := s.repo.ListByUserID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	tasks, err = domain.FilterTasks(tasks, q.Filter, today)
	if err != nil {
		return nil, err
	}
	if err := domain.SortTasks(tasks, q.Sort); err != nil {
		return nil, err
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, s.view(t, today))
	}
	return views, nil
}

func (s *TaskService) Update(ctx context.Context, id, userID string, edit domain.TaskEdit) (*TaskView, error) {
	task, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := task.Apply(edit); err != nil {
		return nil, err
	}
	return s.save(ctx, task)
}

// Toggle flips the completed flag.
func (s *TaskService) Toggle(ctx context.Context, id, userID string) (*TaskView, error) {
	task, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	task.Toggle()
	return s.save(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(userID)
	return nil
}

func (s *TaskService) save(ctx context.Context, task *domain.Task) (*TaskView, error) {
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("task service: failed to update task: %w", err)
	}

	s.notify(task.UserID)
	v := s.view(*task, s.clock.Today())
	return &v, nil
}

func (s *TaskService) owned(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) notify(userID string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.ChangeEvent{
		UserID: userID,
		Kind:   domain.EventTasksUpdated,
		At:     time.Now().UTC(),
	})
}
