package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/milestone"
)

// FormatMilestonePlan renders the plan with a remaining-budget footer. An
// overshoot is shown in red.
func FormatMilestonePlan(plan domain.MilestonePlan, currency domain.Currency) string {
	rows := make([][]string, 0, len(plan.Milestones))
	for _, m := range plan.Milestones {
		days := ""
		if m.DurationDays > 0 {
			days = strconv.Itoa(m.DurationDays) + "d"
		}
		rows = append(rows, []string{strconv.Itoa(m.Order), m.Title, Money(m.Amount, currency), days})
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"#", "MILESTONE", "AMOUNT", "DURATION"}, rows))

	if over := milestone.Overshoot(plan); over > 0 {
		b.WriteString(render(StyleRed, fmt.Sprintf("Over budget by %s", Money(over, currency))))
	} else {
		b.WriteString(Dim(fmt.Sprintf("Allocated %s of %s, %s remaining",
			Money(milestone.Allocated(plan), currency),
			Money(plan.TotalBudget, currency),
			Money(milestone.Remaining(plan), currency))))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatSubmitResult summarizes a submission for the terminal.
func FormatSubmitResult(r *contract.SubmitProposalResult) string {
	var b strings.Builder
	b.WriteString(FormatNotice(r.Notice))
	b.WriteString("\n")

	if r.Proposal != nil {
		fmt.Fprintf(&b, "  %s %s\n", Dim("proposal"), r.Proposal.ID)
		fmt.Fprintf(&b, "  %s %s\n", Dim("status  "), r.Proposal.Status)
	}
	if r.Refreshed {
		b.WriteString(Dim("  (session was refreshed before sending)") + "\n")
	}
	return b.String()
}
