package app

import (
	"context"
	"net/http"

	"family-directory-go/internal/config"
	"family-directory-go/internal/db"
	authdomain "family-directory-go/internal/domain/auth"
	directorydomain "family-directory-go/internal/domain/directory"
	messagingdomain "family-directory-go/internal/domain/messaging"
	authrepo "family-directory-go/internal/repository/postgres/auth"
	directoryrepo "family-directory-go/internal/repository/postgres/directory"
	messagingrepo "family-directory-go/internal/repository/postgres/messaging"
	"family-directory-go/internal/storage"
	"family-directory-go/internal/transport/httpserver"
	"family-directory-go/internal/transport/httpserver/handler"
	"family-directory-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn, log); err != nil {
		return nil, err
	}

	authService := authdomain.NewService(authrepo.NewPostgres(dbConn), cfg.Session.TTL)

	var objectStorage directorydomain.ObjectStorage
	if cfg.Media.Enabled() {
		minioStorage, err := storage.NewMinIO(cfg.Media)
		if err != nil {
			return nil, err
		}
		objectStorage = minioStorage
		log.Info("app: media storage enabled", "endpoint", cfg.Media.Endpoint, "bucket", cfg.Media.Bucket)
	} else {
		log.Info("app: media storage not configured, upload urls disabled")
	}
	directoryService := directorydomain.NewService(directoryrepo.NewPostgres(dbConn), objectStorage)

	messagingService := messagingdomain.NewService(messagingrepo.NewPostgres(dbConn))

	if err := seed(context.Background(), cfg.Seed, authService, log); err != nil {
		return nil, err
	}

	log.Info("app: initializing router")
	handlers := handler.New(authService, directoryService, messagingService, handler.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	}, log)
	router := httpserver.NewRouter(cfg, handlers, authService, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

// seed provisions the bootstrap admin account and, for a freshly created
// admin, one initial invite so the first member can register.
func seed(ctx context.Context, cfg config.SeedConfig, auth *authdomain.Service, log logger.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	admin, created, err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	log.Info("app: seeded admin account", "username", admin.Username)

	if cfg.InviteEmail == "" {
		return nil
	}
	invite, err := auth.CreateInvite(ctx, admin, cfg.InviteEmail)
	if err != nil {
		return err
	}
	log.Info("app: seeded initial invite", "email", invite.Email, "code", invite.Code)
	return nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
