package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"simple-chat/internal/apperr"
	"simple-chat/internal/chat"
	"simple-chat/internal/config"
	"simple-chat/internal/health"
	"simple-chat/internal/metrics"
	myMiddleware "simple-chat/internal/middleware"
	"simple-chat/internal/render"
	"simple-chat/internal/user"
)

type Application struct {
	config        *config.Config
	chatHandler   *chat.Handler
	userHandler   *user.Handler
	healthHandler *health.Handler
	sessions      *myMiddleware.SessionMiddleware
	renderer      *render.Renderer
	metrics       *metrics.Metrics
	logger        *zap.SugaredLogger
}

func NewApplication(
	cfg *config.Config,
	chatHandler *chat.Handler,
	userHandler *user.Handler,
	healthHandler *health.Handler,
	sessions *myMiddleware.SessionMiddleware,
	renderer *render.Renderer,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) *Application {
	return &Application{
		config:        cfg,
		chatHandler:   chatHandler,
		userHandler:   userHandler,
		healthHandler: healthHandler,
		sessions:      sessions,
		renderer:      renderer,
		metrics:       m,
		logger:        logger,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(myMiddleware.RequestLogger(app.logger))
	r.Use(chimw.Recoverer)

	if app.config.Metrics.Enabled {
		r.Use(app.metrics.Middleware)
		r.Handle(app.config.Metrics.Path, app.metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.renderer.Error(w, r, &apperr.Error{Kind: apperr.KindNotFound, Msg: "Not found!"})
	})

	r.Get("/health", app.healthHandler.GetHealth)

	r.Group(func(r chi.Router) {
		r.Use(app.sessions.Load)

		// first touch creates the session user
		r.With(app.sessions.Identify).Get("/", app.chatHandler.Home)
		r.With(app.sessions.Identify).Get("/api/rooms", app.chatHandler.ListRooms)
		r.Get("/room/{id}", app.chatHandler.ShowRoom)

		r.Group(func(r chi.Router) {
			r.Use(app.sessions.RequireUser)

			r.Post("/room/create", app.chatHandler.CreateRoom)
			r.Post("/room/{id}", app.chatHandler.PostMessage)
			r.Post("/room/{id}/join", app.chatHandler.JoinRoom)
			r.Post("/room/{id}/leave", app.chatHandler.LeaveRoom)
			r.Post("/room/{id}/delete", app.chatHandler.DeleteRoom)
			r.Delete("/room/{id}", app.chatHandler.DeleteRoom)

			r.Get("/api/me", app.userHandler.Me)
			r.Post("/api/me/nickname", app.userHandler.Rename)
		})
	})

	return otelhttp.NewHandler(r, "simple-chat")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.Addr(),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  app.config.HTTP.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	shutdown := make(chan error)
	failed := make(chan struct{})

	go func() {
		var s os.Signal
		select {
		case s = <-quit:
		case <-failed:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), app.config.HTTP.ShutdownTimeout)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr, "env", app.config.App.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		close(failed)
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
