package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/cli"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/cli/formatter"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/config"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/service"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		var reported *cli.ReportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	formatter.SetColor(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	root := cli.NewRootCmd(viper.New(), build)
	return root.ExecuteContext(ctx)
}

// build wires the client stack for one invocation.
func build(cfg config.Config) (*cli.App, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	var observer api.Observer = api.NoopObserver{}
	if cfg.LogCalls {
		observer = api.NewLogObserver(logger)
	}
	client := api.NewClientFromConfig(cfg, observer)

	var refresher session.Refresher
	if cfg.RefreshToken != "" {
		refresher = session.NewHTTPRefresher(client, cfg.RefreshToken)
	}
	store := session.NewStore(api.Credential(cfg.Token), refresher)

	relogin := session.ReloginFunc(func(reason string) {
		logger.Info("relogin_required", "reason", reason)
		fmt.Fprintln(os.Stderr, "Please log in again and export a fresh CASEWHR_TOKEN.")
	})
	orch := session.NewOrchestrator(client, store, relogin,
		session.WithRedirectDelay(cfg.RedirectDelay()),
		session.WithLogger(logger),
	)

	useCases := service.NewSlogUseCaseObserver(logger)
	return &cli.App{
		Projects:  service.NewProjectService(client, store, orch, useCases),
		Proposals: service.NewProposalService(orch, useCases),
		Admin:     service.NewAdminService(orch, useCases),
		Logger:    logger,
		Out:       os.Stdout,
		Err:       os.Stderr,
	}, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
