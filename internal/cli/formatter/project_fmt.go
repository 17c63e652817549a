package formatter

import (
	"fmt"
	"strings"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

// FormatProjectList renders projects as a table. IDs are shortened to their
// first 8 characters.
func FormatProjectList(projects []domain.Project) string {
	if len(projects) == 0 {
		return Dim("No projects found.") + "\n"
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			shortID(p.ID),
			p.Title,
			budgetRange(p),
			render(ProjectStatusStyle(p.Status), strings.ToUpper(string(p.Status))),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "BUDGET", "STATUS"}, rows)
}

func budgetRange(p domain.Project) string {
	switch {
	case p.BudgetMax > 0 && p.BudgetMin != p.BudgetMax:
		return fmt.Sprintf("%s – %s", Money(p.BudgetMin, p.Currency), Money(p.BudgetMax, ""))
	case p.BudgetMax > 0:
		return Money(p.BudgetMax, p.Currency)
	default:
		return Dim("open budget")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
