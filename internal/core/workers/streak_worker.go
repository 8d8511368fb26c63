package workers

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

type HabitStore interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	ListCheckDates(ctx context.Context, habitID string) ([]string, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type StreakJob struct {
	HabitID string
}

// StreakWorker replays a habit's check history to recompute its streaks.
// Used whenever checks arrive out of order (backdated check-ins, imports).
type StreakWorker struct {
	habits HabitStore
	jobs   chan StreakJob
	clock  func() string
	done   chan struct{}
}

func NewStreakWorker(habits HabitStore, today func() string) *StreakWorker {
	if today == nil {
		today = func() string { return time.Now().UTC().Format("2006-01-02") }
	}
	return &StreakWorker{
		habits: habits,
		jobs:   make(chan StreakJob, 100),
		clock:  today,
		done:   make(chan struct{}),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		log.Println("[WORKER] streak worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] streak worker shutting down")
				return
			}
		}
	}()
}

// Done is closed once the worker loop has returned.
func (w *StreakWorker) Done() <-chan struct{} {
	return w.done
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("[WORKER] queue full, dropping streak job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habits.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("[WORKER] failed to fetch habit %s: %v", job.HabitID, err)
		return
	}

	dates, err := w.habits.ListCheckDates(ctx, job.HabitID)
	if err != nil {
		log.Printf("[WORKER] failed to fetch checks for %s: %v", job.HabitID, err)
		return
	}

	current, longest := calculateStreaks(dates, w.clock())

	if habit.CurrentStreak == current && habit.LongestStreak == longest {
		return
	}
	if err := w.habits.UpdateStreaks(ctx, habit.ID, current, longest); err != nil {
		log.Printf("[WORKER] failed to update streak for %s: %v", job.HabitID, err)
		return
	}
	log.Printf("[WORKER] streak updated for %s: current=%d longest=%d", habit.Title, current, longest)
}

// calculateStreaks returns the run ending at the latest check (kept alive if
// that check is today or yesterday) and the longest run overall.
func calculateStreaks(dates []string, today string) (int, int) {
	seen := make(map[string]bool, len(dates))
	unique := make([]string, 0, len(dates))
	for _, d := range dates {
		d = domain.ClampISODate(d)
		if _, ok := domain.ParseISODateUTC(d); !ok || seen[d] {
			continue
		}
		seen[d] = true
		unique = append(unique, d)
	}
	if len(unique) == 0 {
		return 0, 0
	}

	sort.Sort(sort.Reverse(sort.StringSlice(unique)))

	current := 0
	if gap, ok := domain.DaysBetween(unique[0], today); ok && gap <= 1 {
		current = 1
		for i := 0; i < len(unique)-1; i++ {
			if domain.AddDaysISO(unique[i+1], 1) != unique[i] {
				break
			}
			current++
		}
	}

	longest, run := 1, 1
	for i := 0; i < len(unique)-1; i++ {
		if domain.AddDaysISO(unique[i+1], 1) == unique[i] {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	return current, longest
}
