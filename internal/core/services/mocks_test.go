package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
)

const testToday = "2024-03-15"

var testClock = services.FixedClock(testToday)

type MockAttendanceRepo struct {
	mock.Mock
}

func (m *MockAttendanceRepo) Upsert(ctx context.Context, day *domain.AttendanceDay) error {
	return m.Called(ctx, day).Error(0)
}

func (m *MockAttendanceRepo) UpdateIfVersion(ctx context.Context, day *domain.AttendanceDay, expected int) error {
	return m.Called(ctx, day, expected).Error(0)
}

func (m *MockAttendanceRepo) GetByDate(ctx context.Context, userID, date string) (*domain.AttendanceDay, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceDay), args.Error(1)
}

func (m *MockAttendanceRepo) ListByUserID(ctx context.Context, userID string) ([]domain.AttendanceDay, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceDay), args.Error(1)
}

func (m *MockAttendanceRepo) ListInRange(ctx context.Context, userID, start, end string) ([]domain.AttendanceDay, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceDay), args.Error(1)
}

func (m *MockAttendanceRepo) Delete(ctx context.Context, userID, date string) error {
	return m.Called(ctx, userID, date).Error(0)
}

func (m *MockAttendanceRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]domain.AttendanceDay, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceDay), args.Error(1)
}

type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) Create(ctx context.Context, student *domain.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *MockStudentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepo) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepo) Update(ctx context.Context, student *domain.Student) error {
	return m.Called(ctx, student).Error(0)
}

type MockHabitRepo struct {
	mock.Mock
}

func (m *MockHabitRepo) Create(ctx context.Context, habit *domain.Habit) error {
	return m.Called(ctx, habit).Error(0)
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) Update(ctx context.Context, habit *domain.Habit) error {
	return m.Called(ctx, habit).Error(0)
}

func (m *MockHabitRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockHabitRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	return m.Called(ctx, id, current, longest).Error(0)
}

func (m *MockHabitRepo) AddCheck(ctx context.Context, check *domain.HabitCheck) error {
	return m.Called(ctx, check).Error(0)
}

func (m *MockHabitRepo) ListCheckDates(ctx context.Context, habitID string) ([]string, error) {
	args := m.Called(ctx, habitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockHabitRepo) ListChecksByUserID(ctx context.Context, userID string) ([]domain.HabitCheck, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HabitCheck), args.Error(1)
}

type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockExamRepo struct {
	mock.Mock
}

func (m *MockExamRepo) Create(ctx context.Context, exam *domain.Exam) error {
	return m.Called(ctx, exam).Error(0)
}

func (m *MockExamRepo) GetByID(ctx context.Context, id string) (*domain.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Exam), args.Error(1)
}

func (m *MockExamRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Exam, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Exam), args.Error(1)
}

func (m *MockExamRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *recordingPublisher) Publish(e domain.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]string, 0, len(p.events))
	for _, e := range p.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type recordingScheduler struct {
	mu  sync.Mutex
	ids []string
}

func (s *recordingScheduler) Enqueue(habitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, habitID)
}

func studentWithSemester(id, start, end string) *domain.Student {
	s, _ := domain.NewStudent(id, id+"@studo.app")
	if start != "" {
		_ = s.SetSemester(&domain.SemesterWindow{Start: start, End: end})
	}
	return s
}

func presentRun(dates []string, classes int) []domain.AttendanceDay {
	days := make([]domain.AttendanceDay, 0, len(dates))
	for _, d := range dates {
		days = append(days, *domain.NewAttendanceDay("u1", domain.AttendanceInput{
			Date: d, TotalClasses: classes, Status: domain.StatusPresent,
		}))
	}
	return days
}
