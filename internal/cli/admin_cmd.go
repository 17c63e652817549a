package cli

import (
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/cli/formatter"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/spf13/cobra"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative actions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "user-status <user-id> <active|suspended|banned>",
		Short:     "Change a user's account status",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.UserActive), string(domain.UserSuspended), string(domain.UserBanned)},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Admin.UpdateUserStatus(cmd.Context(), args[0], domain.UserStatus(args[1]))
			if err != nil {
				return app.fail(cmd.Context(), err)
			}
			app.printf("%s\n", formatter.FormatNotice(result.Notice))
			return nil
		},
	})
	return cmd
}
