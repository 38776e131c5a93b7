package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/config"
	"github.com/ivankudzin/matchrank/internal/infra/metrics"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
	redrepo "github.com/ivankudzin/matchrank/internal/repo/redis"
	behaviorsvc "github.com/ivankudzin/matchrank/internal/services/behavior"
	feedsvc "github.com/ivankudzin/matchrank/internal/services/feed"
	healthsvc "github.com/ivankudzin/matchrank/internal/services/health"
	heatsvc "github.com/ivankudzin/matchrank/internal/services/heating"
	prefsvc "github.com/ivankudzin/matchrank/internal/services/preferences"
	rankingsvc "github.com/ivankudzin/matchrank/internal/services/ranking"
	safetysvc "github.com/ivankudzin/matchrank/internal/services/safety"
	signalsvc "github.com/ivankudzin/matchrank/internal/services/signals"
	tiersvc "github.com/ivankudzin/matchrank/internal/services/tiers"
)

type App struct {
	cfg          config.Config
	logger       *zap.Logger
	server       *http.Server
	postgres     *pgxpool.Pool
	redis        *goredis.Client
	worker       *behaviorsvc.Worker
	workerCancel context.CancelFunc
	httpRouter   http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	counterRepo := redrepo.NewCounterRepo(redisClient)
	queueRepo := redrepo.NewQueueRepo(redisClient)

	signalRepo := pgrepo.NewSignalRepo(pool)
	profileRepo := pgrepo.NewBehaviorProfileRepo(pool)
	preferenceRepo := pgrepo.NewPreferenceRepo(pool)
	userRepo := pgrepo.NewUserRepo(pool)
	blockRepo := pgrepo.NewBlockRepo(pool)
	heatingRepo := pgrepo.NewHeatingRepo(pool)
	engineMetricsRepo := pgrepo.NewEngineMetricsRepo(pool)

	engineMetrics := metrics.New()
	registry := prometheus.NewRegistry()
	if err := engineMetrics.Register(registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	signalService := signalsvc.NewService(signalRepo, queueRepo)
	signalService.AttachLogger(log)

	preferenceService := prefsvc.NewService(userRepo, preferenceRepo, prefsvc.Config{
		MaxLikedAnalyzed:  cfg.Engine.Preferences.MaxLikedAnalyzed,
		AgeMarginYears:    cfg.Engine.Preferences.AgeMarginYears,
		DistanceFactor:    cfg.Engine.Preferences.DistanceFactor,
		TagMinOccurrences: cfg.Engine.Preferences.TagMinOccurrences,
	})

	behaviorService := behaviorsvc.NewService(signalRepo, profileRepo, behaviorsvc.Config{
		SignalWindow:       cfg.Engine.Behavior.SignalWindow,
		PreferenceMinSwipe: cfg.Engine.Behavior.PreferenceMinSwipe,
		MaxLikedAnalyzed:   cfg.Engine.Preferences.MaxLikedAnalyzed,
	})
	behaviorService.AttachLearner(preferenceService)
	behaviorService.AttachLogger(log)

	heatingService := heatsvc.NewService(heatingRepo, counterRepo, heatsvc.Config{
		Window:         cfg.Engine.Heating.Window,
		DecayPerMinute: cfg.Engine.Heating.DecayPerMinute,
		MaxPerDay:      cfg.Engine.Heating.MaxPerDay,
	})
	heatingService.AttachMetrics(engineMetrics)

	tierClassifier := tiersvc.NewClassifier(signalRepo, cfg.Engine.Tiers)
	safetyService := safetysvc.NewService(blockRepo)

	rankingService := rankingsvc.NewService(rankingsvc.Dependencies{
		Users:    userRepo,
		Profiles: behaviorService,
		Prefs:    preferenceService,
		Signals:  signalRepo,
		Heat:     heatingService,
		Tiers:    tierClassifier,
	}, cfg.Engine.Ranking)
	rankingService.AttachLogger(log)
	rankingService.AttachMetrics(engineMetrics)

	feedService := feedsvc.NewService(userRepo, safetyService, rankingService, cfg.Engine.Feed)
	feedService.AttachLogger(log)
	feedService.AttachMetrics(engineMetrics)

	healthService := healthsvc.NewService(engineMetricsRepo, userRepo, cfg.Engine.Health)

	worker := behaviorsvc.NewWorker(queueRepo, behaviorService, cfg.Jobs.RefreshWorkers)
	worker.AttachLogger(log)
	worker.AttachMetrics(engineMetrics)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		SignalService:     signalService,
		BehaviorService:   behaviorService,
		PreferenceService: preferenceService,
		HeatingService:    heatingService,
		RankingService:    rankingService,
		FeedService:       feedService,
		HealthService:     healthService,
		MetricsHandler:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:            log,
		Config:            cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		worker:     worker,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	workerCtx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	go a.worker.Run(workerCtx)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.workerCancel != nil {
		a.workerCancel()
	}
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
