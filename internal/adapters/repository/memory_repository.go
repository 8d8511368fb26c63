package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

var (
	_ domain.AttendanceRepository = (*InMemoryAttendanceRepository)(nil)
	_ domain.StudentRepository    = (*InMemoryStudentRepository)(nil)
	_ domain.HabitRepository      = (*InMemoryHabitRepository)(nil)
	_ domain.TaskRepository       = (*InMemoryTaskRepository)(nil)
	_ domain.ExamRepository       = (*InMemoryExamRepository)(nil)
)

// InMemoryAttendanceRepository backs the memory storage driver and the
// end-to-end tests. Values are copied in and out so callers never share state.
type InMemoryAttendanceRepository struct {
	store map[string]map[string]domain.AttendanceDay

	mu sync.RWMutex
}

func NewInMemoryAttendanceRepository() *InMemoryAttendanceRepository {
	return &InMemoryAttendanceRepository{
		store: make(map[string]map[string]domain.AttendanceDay),
	}
}

func (r *InMemoryAttendanceRepository) Upsert(ctx context.Context, day *domain.AttendanceDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	days := r.store[day.UserID]
	if days == nil {
		days = make(map[string]domain.AttendanceDay)
		r.store[day.UserID] = days
	}

	now := time.Now().UTC()
	if prev, ok := days[day.Date]; ok {
		day.Version = prev.Version + 1
		day.CreatedAt = prev.CreatedAt
	} else {
		day.Version = 1
		if day.CreatedAt.IsZero() {
			day.CreatedAt = now
		}
	}
	day.UpdatedAt = now
	day.DeletedAt = nil

	days[day.Date] = *day
	return nil
}

func (r *InMemoryAttendanceRepository) UpdateIfVersion(ctx context.Context, day *domain.AttendanceDay, expected int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.store[day.UserID][day.Date]
	if !ok || prev.DeletedAt != nil {
		return domain.ErrAttendanceNotFound
	}
	if prev.Version != expected {
		return domain.ErrAttendanceConflict
	}

	day.Version = prev.Version + 1
	day.CreatedAt = prev.CreatedAt
	day.UpdatedAt = time.Now().UTC()
	day.DeletedAt = nil

	r.store[day.UserID][day.Date] = *day
	return nil
}

func (r *InMemoryAttendanceRepository) GetByDate(ctx context.Context, userID, date string) (*domain.AttendanceDay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day, ok := r.store[userID][date]
	if !ok || day.DeletedAt != nil {
		return nil, domain.ErrAttendanceNotFound
	}
	return &day, nil
}

func (r *InMemoryAttendanceRepository) ListByUserID(ctx context.Context, userID string) ([]domain.AttendanceDay, error) {
	return r.collect(userID, func(d domain.AttendanceDay) bool { return d.DeletedAt == nil }, byDate), nil
}

func (r *InMemoryAttendanceRepository) ListInRange(ctx context.Context, userID, start, end string) ([]domain.AttendanceDay, error) {
	return r.collect(userID, func(d domain.AttendanceDay) bool {
		return d.DeletedAt == nil && d.Date >= start && d.Date <= end
	}, byDate), nil
}

func (r *InMemoryAttendanceRepository) Delete(ctx context.Context, userID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	day, ok := r.store[userID][date]
	if !ok || day.DeletedAt != nil {
		return domain.ErrAttendanceNotFound
	}

	now := time.Now().UTC()
	day.DeletedAt = &now
	day.UpdatedAt = now
	day.Version++
	r.store[userID][date] = day
	return nil
}

func (r *InMemoryAttendanceRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]domain.AttendanceDay, error) {
	return r.collect(userID, func(d domain.AttendanceDay) bool { return d.UpdatedAt.After(since) }, byUpdate), nil
}

func (r *InMemoryAttendanceRepository) collect(userID string, keep func(domain.AttendanceDay) bool, less func(a, b domain.AttendanceDay) bool) []domain.AttendanceDay {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.AttendanceDay{}
	for _, d := range r.store[userID] {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byDate(a, b domain.AttendanceDay) bool { return a.Date < b.Date }

func byUpdate(a, b domain.AttendanceDay) bool { return a.UpdatedAt.Before(b.UpdatedAt) }

type InMemoryStudentRepository struct {
	byID map[string]domain.Student

	mu sync.RWMutex
}

func NewInMemoryStudentRepository() *InMemoryStudentRepository {
	return &InMemoryStudentRepository{byID: make(map[string]domain.Student)}
}

func (r *InMemoryStudentRepository) Create(ctx context.Context, s *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Email == s.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.byID[s.ID] = *s
	return nil
}

func (r *InMemoryStudentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	return &s, nil
}

func (r *InMemoryStudentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.Email == email {
			return &s, nil
		}
	}
	return nil, domain.ErrStudentNotFound
}

func (r *InMemoryStudentRepository) Update(ctx context.Context, s *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrStudentNotFound
	}
	r.byID[s.ID] = *s
	return nil
}

type InMemoryHabitRepository struct {
	store  map[string]domain.Habit
	checks map[string]map[string]domain.HabitCheck

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store:  make(map[string]domain.Habit),
		checks: make(map[string]map[string]domain.HabitCheck),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[habit.ID] = *habit
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return &habit, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID {
			h := h
			habits = append(habits, &h)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}

	r.store[habit.ID] = *habit
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	delete(r.checks, id)
	return nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}

	habit.UpdateStreak(current, longest)
	for date := range r.checks[id] {
		if habit.LastCheckedAt == nil || date > *habit.LastCheckedAt {
			d := date
			habit.LastCheckedAt = &d
		}
	}
	r.store[id] = habit
	return nil
}

func (r *InMemoryHabitRepository) AddCheck(ctx context.Context, check *domain.HabitCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[check.HabitID]; !ok {
		return domain.ErrHabitNotFound
	}
	if r.checks[check.HabitID] == nil {
		r.checks[check.HabitID] = make(map[string]domain.HabitCheck)
	}
	if _, dup := r.checks[check.HabitID][check.Date]; dup {
		return domain.ErrHabitAlreadyChecked
	}
	r.checks[check.HabitID][check.Date] = *check
	return nil
}

func (r *InMemoryHabitRepository) ListCheckDates(ctx context.Context, habitID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dates := make([]string, 0, len(r.checks[habitID]))
	for date := range r.checks[habitID] {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (r *InMemoryHabitRepository) ListChecksByUserID(ctx context.Context, userID string) ([]domain.HabitCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.HabitCheck{}
	for _, perDate := range r.checks {
		for _, c := range perDate {
			if c.UserID == userID {
				out = append(out, c)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type InMemoryTaskRepository struct {
	store map[string]domain.Task

	mu sync.RWMutex
}

func NewInMemoryTaskRepository() *InMemoryTaskRepository {
	return &InMemoryTaskRepository{store: make(map[string]domain.Task)}
}

func (r *InMemoryTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[task.ID] = *task
	return nil
}

func (r *InMemoryTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.store[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *InMemoryTaskRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Task{}
	for _, t := range r.store {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.store[task.ID] = *task
	return nil
}

func (r *InMemoryTaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.store, id)
	return nil
}

type InMemoryExamRepository struct {
	store map[string]domain.Exam

	mu sync.RWMutex
}

func NewInMemoryExamRepository() *InMemoryExamRepository {
	return &InMemoryExamRepository{store: make(map[string]domain.Exam)}
}

func (r *InMemoryExamRepository) Create(ctx context.Context, exam *domain.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[exam.ID] = *exam
	return nil
}

func (r *InMemoryExamRepository) GetByID(ctx context.Context, id string) (*domain.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exam, ok := r.store[id]
	if !ok {
		return nil, domain.ErrExamNotFound
	}
	return &exam, nil
}

func (r *InMemoryExamRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Exam{}
	for _, e := range r.store {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryExamRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrExamNotFound
	}
	delete(r.store, id)
	return nil
}
