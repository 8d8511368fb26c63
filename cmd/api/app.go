package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comitanigiacomo/studo-sync-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/studo-sync-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/studo-sync-engine/internal/adapters/metrics"
	"github.com/comitanigiacomo/studo-sync-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/studo-sync-engine/internal/config"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/workers"
)

type app struct {
	router  *gin.Engine
	streaks *workers.StreakWorker
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type stores struct {
	students   domain.StudentRepository
	attendance domain.AttendanceRepository
	habits     domain.HabitRepository
	tasks      domain.TaskRepository
	exams      domain.ExamRepository
}

// newApp wires storage, services and handlers. The caller owns the lifecycle:
// start a.streaks, serve a.router, then call a.close.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}
	startTime := time.Now()

	var (
		st stores
		db *sqlx.DB
	)
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		st = stores{
			students:   repository.NewInMemoryStudentRepository(),
			attendance: repository.NewInMemoryAttendanceRepository(),
			habits:     repository.NewInMemoryHabitRepository(),
			tasks:      repository.NewInMemoryTaskRepository(),
			exams:      repository.NewInMemoryExamRepository(),
		}

	default:
		logger.Info("connecting to database", "host", cfg.DB.Host, "name", cfg.DB.Name)
		var err error
		db, err = sqlx.Connect("pgx", cfg.DB.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })

		db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

		if err := repository.Migrate(ctx, db); err != nil {
			a.close()
			return nil, err
		}
		logger.Info("database connected and migrated")

		st = stores{
			students:   repository.NewPostgresStudentRepository(db.DB),
			attendance: repository.NewPostgresAttendanceRepository(db),
			habits:     repository.NewPostgresHabitRepository(db),
			tasks:      repository.NewPostgresTaskRepository(db),
			exams:      repository.NewPostgresExamRepository(db),
		}
	}

	var rdb *redis.Client
	if !cfg.Redis.Disabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, running without cache and rate limiting", "error", err)
		} else {
			rdb = client
			a.closers = append(a.closers, func() { rdb.Close() })
			st.attendance = repository.NewCachedAttendanceRepository(st.attendance, rdb)
			logger.Info("redis connected", "addr", cfg.Redis.Addr())
		}
	}

	clock := services.NewClock(cfg.Timezone)
	notifier := workers.NewNotifier()
	a.streaks = workers.NewStreakWorker(st.habits, clock.Today)

	m := metrics.New()
	m.TrackGauge("event_streams_open", "Open server-sent event streams.", func() float64 {
		return float64(notifier.TotalSubscribers())
	})

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, st.students)

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(services.NewAuthService(st.students, tokenService)),
		ProfileHandler:    adapterHTTP.NewProfileHandler(services.NewProfileService(st.students, notifier)),
		AttendanceHandler: adapterHTTP.NewAttendanceHandler(services.NewAttendanceService(st.attendance, notifier, clock), notifier, m),
		AnalyticsHandler:  adapterHTTP.NewAnalyticsHandler(services.NewAnalyticsService(st.attendance, st.students)),
		ForecastHandler:   adapterHTTP.NewForecastHandler(services.NewForecastService(st.attendance, st.students, clock), m, cfg.DefaultTarget),
		HabitHandler:      adapterHTTP.NewHabitHandler(services.NewHabitService(st.habits, a.streaks, notifier, clock)),
		TaskHandler:       adapterHTTP.NewTaskHandler(services.NewTaskService(st.tasks, notifier, clock)),
		ExamHandler:       adapterHTTP.NewExamHandler(services.NewExamService(st.exams, notifier, clock)),
		ExportHandler:     adapterHTTP.NewExportHandler(services.NewExportService(st.students, st.attendance, st.habits, st.tasks, st.exams, a.streaks, notifier, clock)),
		TokenValidator:    tokenService,
		Metrics:           m,
		Logger:            logger,
		Redis:             rdb,
		RateLimit:         cfg.RateLimit,
		RateWindow:        cfg.RateWindow,
		CORSOrigins:       cfg.CORSOrigins,
		StartTime:         startTime,
	}
	if db != nil {
		deps.DB = db
	}

	a.router = adapterHTTP.NewRouter(deps)
	return a, nil
}
