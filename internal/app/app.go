// Package app wires configuration, storage, services and HTTP transports
// into a runnable blog server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/quewww/blog/internal/infra/database"
	"github.com/quewww/blog/internal/infra/logging"
	http_ "github.com/quewww/blog/internal/infra/transport/http"
	"github.com/quewww/blog/internal/infra/view"
	"github.com/quewww/blog/internal/repo/post"
	"github.com/quewww/blog/internal/repo/session"
	"github.com/quewww/blog/internal/repo/user"
	"github.com/quewww/blog/internal/svc/authsvc"
	"github.com/quewww/blog/internal/svc/blogsvc"
)

// Name identifies the application in logs and environment variables.
const Name = "blog"

// Config is the complete application configuration.
type Config struct {
	Log      logging.LoggerConfig      `yaml:"log" env-prefix:"BLOG_LOG_"`
	HTTP     http_.HTTPTransportConfig `yaml:"http" env-prefix:"BLOG_HTTP_"`
	Database database.Config           `yaml:"database" env-prefix:"BLOG_DATABASE_"`
	Auth     authsvc.AuthConfig        `yaml:"auth" env-prefix:"BLOG_AUTH_"`
	Posts    blogsvc.BlogConfig        `yaml:"posts" env-prefix:"BLOG_POSTS_"`
}

// App holds the wired components of a running blog.
type App struct {
	Config   Config
	DB       *sqlx.DB
	Sessions *authsvc.SessionManager

	handler http.Handler
}

// InitDB opens the configured database and creates the schema.
func InitDB(ctx context.Context, cfg database.Config) error {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	return errors.Join(database.InitSchema(ctx, db), db.Close())
}

// New opens the database, ensures the schema and builds every service.
func New(ctx context.Context, cfg Config) (_ *App, err error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, db.Close())
		}
	}()

	if err := database.InitSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	userFactory := user.SQLUserRepositoryFactory(db)

	authSvc, err := authsvc.NewAuthService(userFactory, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}

	sessions, err := authsvc.NewSessionManager(session.SQLSessionRepositoryFactory(db), userFactory, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("new session manager: %w", err)
	}

	postSvc, err := blogsvc.NewPostService(post.SQLPostRepositoryFactory(db), userFactory, cfg.Posts)
	if err != nil {
		return nil, fmt.Errorf("new post service: %w", err)
	}

	views, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	log := logging.GetLogger("app")

	mux := http.NewServeMux()
	authsvc.NewHTTPTransport(authSvc, sessions, views).RegisterRoutes(mux)
	blogsvc.NewHTTPTransport(postSvc, views).RegisterRoutes(mux)

	return &App{
		Config:   cfg,
		DB:       db,
		Sessions: sessions,
		handler:  http_.SessionMiddleware(mux, sessions, log),
	}, nil
}

// Handler returns the routes behind session resolution, without the
// transport middleware chain applied by Serve.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run removes expired sessions and serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	sock, err := net.Listen("tcp", a.Config.HTTP.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return a.Serve(ctx, sock)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, sock net.Listener) error {
	if _, err := a.Sessions.CleanupExpiredSessions(ctx); err != nil {
		return fmt.Errorf("cleanup expired sessions: %w", err)
	}

	if err := http_.Serve(ctx, sock, a.handler, a.Config.HTTP); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// Close releases the database.
func (a *App) Close() error {
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	return nil
}
