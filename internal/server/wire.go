package server

import (
	"go.uber.org/zap"

	"simple-chat/internal/chat"
	"simple-chat/internal/config"
	"simple-chat/internal/health"
	"simple-chat/internal/metrics"
	myMiddleware "simple-chat/internal/middleware"
	"simple-chat/internal/render"
	"simple-chat/internal/session"
	"simple-chat/internal/storage"
	"simple-chat/internal/user"
)

// Wire builds the three stores, closes the cycle between them and hangs the
// services and handlers off the result.
func Wire(
	cfg *config.Config,
	sessions session.Store,
	checks map[string]health.Check,
	logger *zap.SugaredLogger,
) (*Application, error) {
	renderer, err := render.New(cfg.IsProduction(), logger)
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	userStore := user.NewStore(storage.NewMemory[user.User]())
	roomStore := chat.NewRoomStore(storage.NewMemory[chat.Room](), userStore)
	messageStore := chat.NewMessageStore(storage.NewMemory[chat.Message](), roomStore, userStore)
	userStore.SetRooms(roomStore)
	roomStore.SetMessages(messageStore)

	userService := user.NewService(userStore, m, logger)
	chatService := chat.NewService(roomStore, messageStore, userStore, m, logger)

	sessionMiddleware := myMiddleware.NewSessionMiddleware(
		sessions,
		session.NewCodec(cfg.Session.Secret, cfg.Session.TTL),
		userService,
		renderer,
		myMiddleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
		},
		logger,
	)

	return NewApplication(
		cfg,
		chat.NewHandler(chatService, renderer),
		user.NewHandler(userService, renderer),
		health.NewHandler(renderer, checks),
		sessionMiddleware,
		renderer,
		m,
		logger,
	), nil
}
