package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/cli/formatter"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/milestone"
	"github.com/spf13/cobra"
)

func newProposalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposal",
		Aliases: []string{"proposals"},
		Short:   "Submit proposals to projects",
	}
	cmd.AddCommand(newProposalSubmitCmd(app))
	return cmd
}

func newProposalSubmitCmd(app *App) *cobra.Command {
	var (
		req        contract.SubmitProposalRequest
		currency   string
		milestones []string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a proposal",
		Long: `Submit a proposal for a project.

Milestones are given as --milestone "title[:amount[:days]]", in order. A
milestone without an amount is filled with whatever budget is left, so
"Design:600" followed by "Build" splits a 1000 budget 600/400.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Currency = domain.Currency(currency)
			if len(milestones) > 0 {
				if req.FreeTextMilestones != "" {
					return fmt.Errorf("use either --milestone or --free-text, not both")
				}
				plan, err := buildPlan(req.ProposedBudget, milestones)
				if err != nil {
					return err
				}
				req.Plan = &plan
				app.printf("%s\n", formatter.FormatMilestonePlan(plan, req.Currency))
			}
			if dryRun {
				return nil
			}

			result, err := app.Proposals.Submit(cmd.Context(), req)
			if err != nil {
				return app.fail(cmd.Context(), err)
			}
			app.printf("%s", formatter.FormatSubmitResult(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ProjectID, "project", "", "Project ID")
	cmd.Flags().StringVar(&req.CoverLetter, "cover-letter", "", "Cover letter")
	cmd.Flags().Float64Var(&req.ProposedBudget, "budget", 0, "Proposed budget")
	cmd.Flags().StringVar(&currency, "currency", string(domain.CurrencyTWD), "Currency: TWD, USD or CNY")
	cmd.Flags().StringArrayVar(&milestones, "milestone", nil, `Structured milestone "title[:amount[:days]]" (repeatable)`)
	cmd.Flags().StringVar(&req.FreeTextMilestones, "free-text", "", "Payment schedule as free text")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the milestone plan without submitting")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}

type milestoneSpec struct {
	title  string
	amount *float64
	days   int
}

func parseMilestoneSpec(s string) (milestoneSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	spec := milestoneSpec{title: strings.TrimSpace(parts[0])}
	if spec.title == "" {
		return spec, fmt.Errorf("milestone %q: title is required", s)
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		amount, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return spec, fmt.Errorf("milestone %q: invalid amount: %w", s, err)
		}
		spec.amount = &amount
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		days, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return spec, fmt.Errorf("milestone %q: invalid days: %w", s, err)
		}
		spec.days = days
	}
	return spec, nil
}

// buildPlan applies the specs through the allocator in order, the same way
// the proposal form adds and edits rows.
func buildPlan(budget float64, specs []string) (domain.MilestonePlan, error) {
	plan := milestone.NewPlan(budget)
	for i, raw := range specs {
		spec, err := parseMilestoneSpec(raw)
		if err != nil {
			return plan, err
		}

		plan, err = milestone.Add(plan)
		if err != nil {
			return plan, fmt.Errorf("milestone %d (%s): %w; give earlier milestones explicit amounts", i+1, spec.title, err)
		}
		updates := []struct {
			field milestone.Field
			value any
			skip  bool
		}{
			{milestone.FieldTitle, spec.title, false},
			{milestone.FieldAmount, derefOr(spec.amount), spec.amount == nil},
			{milestone.FieldDurationDays, spec.days, spec.days == 0},
		}
		for _, u := range updates {
			if u.skip {
				continue
			}
			if plan, err = milestone.Update(plan, i, u.field, u.value); err != nil {
				return plan, fmt.Errorf("milestone %d (%s): %w", i+1, spec.title, err)
			}
		}
	}
	return plan, nil
}

func derefOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
