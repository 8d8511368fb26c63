package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

type ExportService struct {
	students   domain.StudentRepository
	attendance domain.AttendanceRepository
	habits     domain.HabitRepository
	tasks      domain.TaskRepository
	exams      domain.ExamRepository
	streaks    StreakScheduler
	publisher  domain.ChangePublisher
	validate   *validator.Validate
	clock      Clock
}

func NewExportService(
	students domain.StudentRepository,
	attendance domain.AttendanceRepository,
	habits domain.HabitRepository,
	tasks domain.TaskRepository,
	exams domain.ExamRepository,
	streaks StreakScheduler,
	publisher domain.ChangePublisher,
	clock Clock,
) *ExportService {
	return &ExportService{
		students:   students,
		attendance: attendance,
		habits:     habits,
		tasks:      tasks,
		exams:      exams,
		streaks:    streaks,
		publisher:  publisher,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		clock:      clock,
	}
}

// Export collects the student's data concurrently into one bundle.
func (s *ExportService) Export(ctx context.Context, userID string) (*domain.ExportBundle, error) {
	bundle := &domain.ExportBundle{
		Version:    domain.ExportFormatVersion,
		ExportedAt: time.Now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		student, err := s.students.GetByID(gctx, userID)
		if err != nil {
			return err
		}
		profile := student.Profile
		bundle.Profile = &profile
		bundle.Semester = student.Semester()
		return nil
	})

	g.Go(func() error {
		days, err := s.attendance.ListByUserID(gctx, userID)
		if err != nil {
			return err
		}
		bundle.AttendanceDays = days
		return nil
	})

	g.Go(func() error {
		habits, err := s.habits.ListByUserID(gctx, userID)
		if err != nil {
			return err
		}
		bundle.Habits = make([]domain.Habit, 0, len(habits))
		for _, h := range habits {
			bundle.Habits = append(bundle.Habits, *h)
		}
		return nil
	})

	g.Go(func() error {
		checks, err := s.habits.ListChecksByUserID(gctx, userID)
		if err != nil {
			return err
		}
		bundle.HabitChecks = checks
		return nil
	})

	g.Go(func() error {
		tasks, err := s.tasks.ListByUserID(gctx, userID)
		if err != nil {
			return err
		}
		bundle.Tasks = tasks
		return nil
	})

	g.Go(func() error {
		exams, err := s.exams.ListByUserID(gctx, userID)
		if err != nil {
			return err
		}
		bundle.Exams = exams
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export service: %w", err)
	}
	return bundle, nil
}

type ImportResult struct {
	AttendanceDays int `json:"attendance_days"`
	Habits         int `json:"habits"`
	HabitChecks    int `json:"habit_checks"`
	Tasks          int `json:"tasks"`
	Exams          int `json:"exams"`
}

// importPlan is a bundle fully converted and validated for one student.
// Nothing is written until a plan exists.
type importPlan struct {
	student *domain.Student
	days    []*domain.AttendanceDay
	habits  []*domain.Habit
	checks  []*domain.HabitCheck
	tasks   []*domain.Task
	exams   []*domain.Exam
}

// Import merges a bundle into the student's data. Attendance days overwrite
// by date; habits, tasks and exams are recreated with fresh ids and habit
// checks are remapped onto the new habits.
// A bundle with any invalid record is rejected before anything is stored.
func (s *ExportService) Import(ctx context.Context, userID string, bundle *domain.ExportBundle) (*ImportResult, error) {
	plan, err := s.planImport(ctx, userID, bundle)
	if err != nil {
		return nil, err
	}

	if plan.student != nil {
		if err := s.students.Update(ctx, plan.student); err != nil {
			return nil, err
		}
	}

	result := &ImportResult{}
	for _, day := range plan.days {
		if err := s.attendance.Upsert(ctx, day); err != nil {
			return nil, fmt.Errorf("export service: failed to import %s: %w", day.Date, err)
		}
		result.AttendanceDays++
	}

	for _, habit := range plan.habits {
		if err := s.habits.Create(ctx, habit); err != nil {
			return nil, err
		}
		result.Habits++
	}

	for _, check := range plan.checks {
		if err := s.habits.AddCheck(ctx, check); err != nil && !isAlreadyChecked(err) {
			return nil, err
		}
		result.HabitChecks++
	}

	for _, task := range plan.tasks {
		if err := s.tasks.Create(ctx, task); err != nil {
			return nil, err
		}
		result.Tasks++
	}

	for _, exam := range plan.exams {
		if err := s.exams.Create(ctx, exam); err != nil {
			return nil, err
		}
		result.Exams++
	}

	if s.streaks != nil {
		for _, h := range plan.habits {
			s.streaks.Enqueue(h.ID)
		}
	}

	if s.publisher != nil {
		now := time.Now().UTC()
		s.publisher.Publish(domain.ChangeEvent{UserID: userID, Kind: domain.EventAttendanceUpdated, At: now})
		s.publisher.Publish(domain.ChangeEvent{UserID: userID, Kind: domain.EventProfileUpdated, At: now})
		if result.Tasks > 0 {
			s.publisher.Publish(domain.ChangeEvent{UserID: userID, Kind: domain.EventTasksUpdated, At: now})
		}
		if result.Exams > 0 {
			s.publisher.Publish(domain.ChangeEvent{UserID: userID, Kind: domain.EventExamsUpdated, At: now})
		}
	}

	return result, nil
}

func (s *ExportService) planImport(ctx context.Context, userID string, bundle *domain.ExportBundle) (*importPlan, error) {
	if err := s.validate.StructCtx(ctx, bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}

	today := s.clock.Today()
	plan := &importPlan{
		days:   make([]*domain.AttendanceDay, 0, len(bundle.AttendanceDays)),
		habits: make([]*domain.Habit, 0, len(bundle.Habits)),
	}

	for _, d := range bundle.AttendanceDays {
		day := domain.NewAttendanceDay(userID, d.Input())
		if err := day.Validate(today); err != nil {
			return nil, fmt.Errorf("%w: day %s: %v", domain.ErrInvalidImport, d.Date, err)
		}
		plan.days = append(plan.days, day)
	}

	ids := make(map[string]string, len(bundle.Habits))
	for _, h := range bundle.Habits {
		habit, err := domain.NewHabit(userID, h.Title, h.Color, h.Icon)
		if err != nil {
			return nil, fmt.Errorf("%w: habit %q: %v", domain.ErrInvalidImport, h.Title, err)
		}
		ids[h.ID] = habit.ID
		plan.habits = append(plan.habits, habit)
	}

	for _, c := range bundle.HabitChecks {
		newID, ok := ids[c.HabitID]
		if !ok {
			continue
		}
		check, err := domain.NewHabitCheck(newID, userID, c.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: check %s: %v", domain.ErrInvalidImport, c.Date, err)
		}
		plan.checks = append(plan.checks, check)
	}

	for _, t := range bundle.Tasks {
		due := ""
		if t.DueDate != nil {
			due = *t.DueDate
		}
		task, err := domain.NewTask(userID, t.Title, t.Description, t.Priority, due)
		if err != nil {
			return nil, fmt.Errorf("%w: task %q: %v", domain.ErrInvalidImport, t.Title, err)
		}
		task.Completed = t.Completed
		if !t.CreatedAt.IsZero() {
			task.CreatedAt = t.CreatedAt.UTC()
		}
		plan.tasks = append(plan.tasks, task)
	}

	for _, e := range bundle.Exams {
		exam, err := domain.NewExam(userID, e.Title, e.Subject, e.Kind, e.Date, e.Description)
		if err != nil {
			return nil, fmt.Errorf("%w: exam %q: %v", domain.ErrInvalidImport, e.Title, err)
		}
		plan.exams = append(plan.exams, exam)
	}

	if bundle.Profile != nil || bundle.Semester != nil {
		student, err := s.students.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if bundle.Profile != nil {
			student.UpdateProfile(*bundle.Profile)
		}
		if bundle.Semester != nil {
			if err := student.SetSemester(bundle.Semester); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
			}
		}
		plan.student = student
	}

	return plan, nil
}

var csvHeader = []string{"date", "status", "total_classes", "attended_classes", "leave_counted", "remark", "proof_name"}

// ExportCSV writes one row per attendance day, oldest first.
func (s *ExportService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	days, err := s.attendance.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			d.Date,
			string(d.Status),
			strconv.Itoa(d.TotalClasses),
			strconv.Itoa(d.AttendedClasses),
			strconv.FormatBool(d.IsLeaveCounted()),
			d.Remark,
			d.ProofName,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
