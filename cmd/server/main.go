package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"

	"github.com/billionaireobi/adaladesigns/internal/api"
	"github.com/billionaireobi/adaladesigns/internal/catalogue"
	"github.com/billionaireobi/adaladesigns/internal/config"
	"github.com/billionaireobi/adaladesigns/internal/handlers"
	"github.com/billionaireobi/adaladesigns/internal/models"
	"github.com/billionaireobi/adaladesigns/internal/session"
)

const catalogueTTL = 30 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.APIURL, cfg.AssetURL, cfg.HTTPTimeout)
	cache := catalogue.New(client, catalogueTTL)
	sessions := session.NewStore(cfg.SessionKey, cfg.CookieSecure, cfg.CookieDomain)

	templates := handlers.NewTemplateCache()
	templates.AddFunc("priceLabel", models.PriceLabel)
	templates.AddFunc("imageURL", client.ImageURL)
	if err := templates.Load("templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	public := &handlers.PublicHandler{
		API:       client,
		Catalogue: cache,
		Templates: templates,
	}
	admin := &handlers.AdminHandler{
		API:       client,
		Sessions:  sessions,
		Catalogue: cache,
		Templates: templates,
	}

	mux := http.NewServeMux()

	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	mux.HandleFunc("GET /{$}", public.Home)
	mux.HandleFunc("GET /catalogue", public.CataloguePage)
	mux.HandleFunc("GET /design/{id}", public.DesignDetail)
	mux.HandleFunc("GET /about", public.About)
	mux.HandleFunc("GET /contact", public.Contact)

	loginLimiter := handlers.NewRateLimiter(10 * time.Second)
	mux.HandleFunc("GET /admin/login", admin.LoginGet)
	mux.HandleFunc("POST /admin/login", loginLimiter.Middleware(admin.LoginPost))
	mux.HandleFunc("GET /admin/logout", admin.Logout)

	mux.HandleFunc("GET /admin/dashboard", admin.RequireSession(admin.Dashboard))
	mux.HandleFunc("GET /admin/design/new", admin.RequireSession(admin.NewDesignForm))
	mux.HandleFunc("POST /admin/design/new", admin.RequireSession(admin.CreateDesign))
	mux.HandleFunc("GET /admin/design/edit/{id}", admin.RequireSession(admin.EditDesignForm))
	mux.HandleFunc("POST /admin/design/edit/{id}", admin.RequireSession(admin.UpdateDesign))
	mux.HandleFunc("POST /admin/design/delete", admin.RequireSession(admin.DeleteDesign))

	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "api", cfg.APIURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited gracefully.")
}
