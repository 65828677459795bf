package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/caremeal/caremeal/app/internal/handler/auth"
	"github.com/caremeal/caremeal/app/internal/handler/chat"
	"github.com/caremeal/caremeal/app/internal/handler/events"
	"github.com/caremeal/caremeal/app/internal/handler/meals"
	"github.com/caremeal/caremeal/app/internal/handler/recommend"
	"github.com/caremeal/caremeal/app/internal/handler/stream"
	"github.com/caremeal/caremeal/app/internal/handler/survey"
	middlewarePkg "github.com/caremeal/caremeal/app/internal/middleware"
	"github.com/caremeal/caremeal/app/internal/model/recipe"
	chatService "github.com/caremeal/caremeal/app/internal/service/chat"
	eventsService "github.com/caremeal/caremeal/app/internal/service/events"
	meallogService "github.com/caremeal/caremeal/app/internal/service/meallog"
	recommendService "github.com/caremeal/caremeal/app/internal/service/recommend"
	sessionService "github.com/caremeal/caremeal/app/internal/service/session"
	surveyService "github.com/caremeal/caremeal/app/internal/service/survey"
	"github.com/caremeal/caremeal/app/pkg/utils"
)

// Services bundles everything the HTTP layer talks to. Hub is optional.
type Services struct {
	Sessions  *sessionService.Service
	Surveys   *surveyService.Service
	Chat      *chatService.Service
	Meals     *meallogService.Service
	Recipes   recipe.Store
	Recommend *recommendService.Service
	Hub       *eventsService.Hub
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	started := time.Now()

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status": "ok",
				"uptime": time.Since(started).Round(time.Second).String(),
			})
		})

		auth.New(svc.Sessions, svc.Surveys).RegisterRoutes(api)
		survey.New(svc.Surveys).RegisterRoutes(api)
		chat.New(svc.Chat, svc.Meals).RegisterRoutes(api)
		stream.New(svc.Chat).RegisterRoutes(api)
		meals.New(svc.Meals).RegisterRoutes(api)
		recommend.New(svc.Recipes, svc.Recommend).RegisterRoutes(api)

		if svc.Hub != nil {
			events.NewWebSocketHandler(svc.Hub).RegisterRoutes(api)
		}
	})

	return r
}
