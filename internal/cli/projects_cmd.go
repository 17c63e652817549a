package cli

import (
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/cli/formatter"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Browse and post projects",
	}
	cmd.AddCommand(newProjectsListCmd(app), newProjectsCreateCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects := app.Projects.List(cmd.Context())
			app.printf("%s", formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var (
		draft    domain.ProjectDraft
		currency string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Currency = domain.Currency(currency)
			result, err := app.Projects.Create(cmd.Context(), draft)
			if err != nil {
				return app.fail(cmd.Context(), err)
			}
			app.printf("%s\n", formatter.FormatNotice(result.Notice))
			if result.Project != nil {
				app.printf("  %s %s\n", formatter.Dim("id"), result.Project.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Title, "title", "", "Project title")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Project description")
	cmd.Flags().Float64Var(&draft.BudgetMin, "budget-min", 0, "Minimum budget")
	cmd.Flags().Float64Var(&draft.BudgetMax, "budget-max", 0, "Maximum budget")
	cmd.Flags().StringVar(&currency, "currency", string(domain.CurrencyTWD), "Currency: TWD, USD or CNY")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
