package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/config"
	behaviorsvc "github.com/ivankudzin/matchrank/internal/services/behavior"
	feedsvc "github.com/ivankudzin/matchrank/internal/services/feed"
	healthsvc "github.com/ivankudzin/matchrank/internal/services/health"
	heatsvc "github.com/ivankudzin/matchrank/internal/services/heating"
	prefsvc "github.com/ivankudzin/matchrank/internal/services/preferences"
	rankingsvc "github.com/ivankudzin/matchrank/internal/services/ranking"
	signalsvc "github.com/ivankudzin/matchrank/internal/services/signals"
	"github.com/ivankudzin/matchrank/internal/transport/http/handlers"
)

type Dependencies struct {
	SignalService     *signalsvc.Service
	BehaviorService   *behaviorsvc.Service
	PreferenceService *prefsvc.Service
	HeatingService    *heatsvc.Service
	RankingService    *rankingsvc.Service
	FeedService       *feedsvc.Service
	HealthService     *healthsvc.Service
	MetricsHandler    http.Handler
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	signalsHandler := handlers.NewSignalsHandler(deps.SignalService, deps.Logger)
	behaviorHandler := handlers.NewBehaviorHandler(deps.BehaviorService, deps.Logger)
	preferencesHandler := handlers.NewPreferencesHandler(deps.PreferenceService, deps.Logger)
	heatingHandler := handlers.NewHeatingHandler(deps.HeatingService, deps.Logger)
	rankingHandler := handlers.NewRankingHandler(deps.RankingService, deps.Logger)
	feedHandler := handlers.NewFeedHandler(deps.FeedService, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.HealthService, deps.Logger)

	identityMW := IdentityMiddleware(deps.Logger)
	adminMW := AdminAuthMiddleware(deps.Config.Admin, deps.Logger)

	r.Get("/healthz", healthHandler.Liveness)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.With(identityMW).Post("/signals", signalsHandler.Record)
	r.With(identityMW).Get("/feed", feedHandler.Get)
	r.With(identityMW).Get("/ranking/preview", rankingHandler.Preview)
	r.With(identityMW).Get("/users/{id}/behavior", behaviorHandler.Get)
	r.With(identityMW).Get("/users/{id}/preferences", preferencesHandler.Get)
	r.With(identityMW).Get("/users/{id}/heating", heatingHandler.Get)

	r.Route("/internal", func(r chi.Router) {
		r.Use(adminMW)
		r.Post("/heating/activate", heatingHandler.Activate)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminMW)
		r.Get("/engine/health", healthHandler.Engine)
		r.Delete("/users/{id}/heating", heatingHandler.Deactivate)
	})
}
