package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/api"
	"github.com/caremeal/caremeal/app/internal/config"
	"github.com/caremeal/caremeal/app/internal/handler"
	"github.com/caremeal/caremeal/app/internal/model/recipe"
	"github.com/caremeal/caremeal/app/internal/remote"
	"github.com/caremeal/caremeal/app/internal/service/ai"
	"github.com/caremeal/caremeal/app/internal/service/chat"
	"github.com/caremeal/caremeal/app/internal/service/events"
	"github.com/caremeal/caremeal/app/internal/service/meallog"
	"github.com/caremeal/caremeal/app/internal/service/recommend"
	"github.com/caremeal/caremeal/app/internal/service/session"
	"github.com/caremeal/caremeal/app/internal/service/survey"
	"github.com/caremeal/caremeal/app/internal/storage"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("failed to load .env file, continuing with system environment variables only")
	}

	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open local store")
	}
	defer store.Close()

	apiClient := api.NewClient(cfg.API, nil)
	mock := api.NewMockReplier(cfg.API.MockMinLatency, cfg.API.MockMaxLatency)

	// Optional local model between the backend and the canned replies
	var generator chat.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			logrus.WithError(err).Warn("failed to initialize AI service, continuing without model fallback")
		} else {
			generator = aiService
			logrus.Info("AI fallback initialized")
		}
	} else {
		logrus.Info("Ark 凭证未配置，跳过模型兜底")
	}

	stores, err := remote.Open(ctx, cfg.Remote, apiClient)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize remote stores")
	}

	hub := events.NewHub()

	sessions, err := session.NewService(ctx, store, apiClient, hub)
	if err != nil {
		logrus.WithError(err).Fatal("failed to restore session")
	}

	chatSvc, err := chat.NewService(ctx, chat.Dependencies{
		Store:     store,
		Backend:   apiClient,
		Generator: generator,
		Mock:      mock,
		Images:    stores.Images,
		Profile:   sessions,
		Events:    hub,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to restore chat history")
	}

	mealSvc, err := meallog.NewService(ctx, meallog.Dependencies{
		Store:    store,
		Remote:   stores.Meals,
		Analyzer: apiClient,
		Profile:  sessions,
		Events:   hub,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to restore meal log")
	}

	surveySvc := survey.NewService(sessions)
	recipes := recipe.NewSeededStore()

	sessions.OnLogout(chatSvc.Reset)
	sessions.OnLogout(mealSvc.Reset)
	sessions.OnLogout(surveySvc.Reset)

	router := handler.NewRouter(handler.Services{
		Sessions:  sessions,
		Surveys:   surveySvc,
		Chat:      chatSvc,
		Meals:     mealSvc,
		Recipes:   recipes,
		Recommend: recommend.NewService(recipes, sessions),
		Hub:       hub,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logrus.WithField("addr", addr).Info("CareMeal listening")
	if err := runServer(ctx, srv); err != nil {
		logrus.WithError(err).Fatal("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
