package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"

	"github.com/sabo-arena/arena-bracket/internal/config"
	"github.com/sabo-arena/arena-bracket/internal/db"
	"github.com/sabo-arena/arena-bracket/internal/live"
	"github.com/sabo-arena/arena-bracket/internal/middleware"
	"github.com/sabo-arena/arena-bracket/internal/service"
	"github.com/sabo-arena/arena-bracket/internal/storage"
	"github.com/sabo-arena/arena-bracket/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.InitDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.DBDriver, cfg.MigrationsDir()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		if uploader, err = storage.NewR2Uploader(ctx, cfg.R2); err != nil {
			log.Fatal(err)
		}
	} else {
		slog.Warn("R2 is not configured, avatar uploads are disabled")
	}

	if providers := middleware.InitAuth(cfg.Auth); len(providers) > 0 {
		slog.Info("oauth providers enabled", "providers", providers)
	} else {
		slog.Warn("no OAuth provider configured, only guest login is available")
	}

	hub := live.NewHub(cfg.AllowedOrigins)
	go hub.Run(ctx)

	app := newApplication(database, newSessionManager(cfg, database), hub, uploader)
	app.loginRedirect = cfg.Auth.LoginRedirectURL
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(app, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func newSessionManager(cfg *config.Config, database *sqlx.DB) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	// Only the sqlite schema carries the sessions table
	if cfg.DBDriver == "sqlite3" {
		sessionManager.Store = sqlite3store.New(database.DB)
	} else {
		sessionManager.Store = memstore.New()
	}
	return sessionManager
}

type application struct {
	sessions    *scs.SessionManager
	userStore   *store.UserStore
	users       *service.UserService
	tournaments *service.TournamentService
	matches     *service.MatchService
	players     *service.PlayerService
	hub         *live.Hub

	// Browser destination after an OAuth login, empty answers JSON
	loginRedirect string
}

func newApplication(database *sqlx.DB, sessions *scs.SessionManager, hub *live.Hub, uploader storage.FileUploader) *application {
	userStore := store.NewUserStore(database)
	tournamentStore := store.NewTournamentStore(database)
	tournaments := service.NewTournamentService(database, tournamentStore, hub)

	return &application{
		sessions:    sessions,
		userStore:   userStore,
		users:       service.NewUserService(userStore),
		tournaments: tournaments,
		matches:     service.NewMatchService(database, tournamentStore, tournaments),
		players:     service.NewPlayerService(tournamentStore, uploader, tournaments),
		hub:         hub,
	}
}
