// Command quickaid runs the QuickAid identity and session service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quickaid/quickaid/internal/auth"
	"github.com/quickaid/quickaid/internal/config"
	"github.com/quickaid/quickaid/internal/flow"
	"github.com/quickaid/quickaid/internal/mailer"
	"github.com/quickaid/quickaid/internal/store"
	"github.com/quickaid/quickaid/internal/token"
	"github.com/quickaid/quickaid/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBType, cfg.DSN)
	if err != nil {
		return err
	}

	issuer := token.NewIssuer(cfg.JWTSecret, "quickaid", cfg.SessionTTL)

	var sender mailer.Sender = &mailer.ConsoleSender{}
	if cfg.SMTPHost != "" {
		sender = &mailer.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
		}
	}

	flows := &flow.Workflow{
		Store:     st,
		Mailer:    sender,
		ClientURL: cfg.ClientURL,
	}

	google := auth.NewGoogle(st, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	strategies := auth.Strategies{
		"local":  auth.NewLocal(st),
		"google": google,
	}

	srv := &web.Server{
		Store:      st,
		Issuer:     issuer,
		Strategies: strategies,
		Flows:      flows,
		Google:     google,
		Gate: &web.Gate{
			Store:   st,
			Issuer:  issuer,
			Sliding: cfg.SessionSliding,
			Secure:  cfg.IsProduction(),
		},
		ClientURL: cfg.ClientURL,
		Secure:    cfg.IsProduction(),
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           web.CORS(cfg.CORSOrigin, srv.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
