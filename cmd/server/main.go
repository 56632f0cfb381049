package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-relay/internal/config"
	"github.com/jrsteele09/go-auth-relay/provider"
	"github.com/jrsteele09/go-auth-relay/server"
	"github.com/jrsteele09/go-auth-relay/server/authstate"
	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/jrsteele09/go-auth-relay/statetoken"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	displayAppname(cfg.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idp, err := provider.New(ctx, provider.Options{
		IssuerURL:    cfg.IssuerURL,
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Timeout:      cfg.ProviderTimeout,
	})
	if err != nil {
		return err
	}

	store := sessions.NewStore()
	states := authstate.NewRegistry(statetoken.TTL)
	go store.RunSweeper(ctx, cfg.SweepInterval)
	go states.RunSweeper(ctx, cfg.SweepInterval)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: server.New(cfg, idp, store, states),
	}
	go listenAndServe(httpServer)

	log.Info().
		Str("addr", httpServer.Addr).
		Str("frontend", cfg.FrontendURL).
		Msg("Auth relay started")

	<-ctx.Done()
	return shutdown(httpServer)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
