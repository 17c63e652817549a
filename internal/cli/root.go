package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/cli/formatter"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/config"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/service"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects  service.ProjectService
	Proposals service.ProposalService
	Admin     service.AdminService
	Logger    *slog.Logger
	Config    config.Config

	Out io.Writer
	Err io.Writer
}

// Builder wires an App once configuration is resolved. It runs after flag
// parsing so flags take part in config resolution.
type Builder func(cfg config.Config) (*App, error)

// ReportedError wraps a failure whose notice was already printed.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// NewRootCmd creates the top-level "casewhr" command. Persistent flags are
// bound into v under the config keys they override.
func NewRootCmd(v *viper.Viper, build Builder) *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:           "casewhr",
		Short:         "Freelance marketplace client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(v)
			if err != nil {
				return err
			}
			built, err := build(cfg)
			if err != nil {
				return err
			}
			*app = *built
			app.Config = cfg
			if app.Out == nil {
				app.Out = cmd.OutOrStdout()
			}
			if app.Err == nil {
				app.Err = cmd.ErrOrStderr()
			}
			if app.Logger == nil {
				app.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			}
			return nil
		},
	}

	bindGlobalFlags(v, root.PersistentFlags())

	root.AddCommand(
		newProjectsCmd(app),
		newProposalCmd(app),
		newAdminCmd(app),
		newStubCmd(app),
	)
	return root
}

// globalFlags maps config keys to the persistent flags that override them.
var globalFlags = []struct {
	key, flag, usage string
	isBool           bool
}{
	{"config", "config", "YAML config file (env CASEWHR_CONFIG)", false},
	{"base_url", "base-url", "Backend base URL", false},
	{"token", "token", "Access token for the current session", false},
	{"refresh_token", "refresh-token", "Refresh token for the current session", false},
	{"dev_mode", "dev", "Enable dev-token authentication (non-production builds only)", true},
	{"log_level", "log-level", "Log level: debug, info, warn, error", false},
}

func bindGlobalFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for _, f := range globalFlags {
		if f.isBool {
			flags.Bool(f.flag, false, f.usage)
		} else {
			flags.String(f.flag, "", f.usage)
		}
		_ = v.BindPFlag(f.key, flags.Lookup(f.flag))
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

// fail prints the user-facing notice for err. On session expiry it waits
// out the redirect countdown so the scheduled re-login runs before exit.
func (a *App) fail(ctx context.Context, err error) error {
	fmt.Fprintln(a.Err, formatter.FormatNotice(contract.NoticeFor(err)))
	a.Logger.Debug("command_failed", "error", err.Error())

	var expired *session.SessionExpiredError
	if errors.As(err, &expired) && expired.RedirectIn > 0 {
		select {
		case <-time.After(expired.RedirectIn + 100*time.Millisecond):
		case <-ctx.Done():
		}
	}
	return &ReportedError{Err: err}
}
