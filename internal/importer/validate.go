package importer

import (
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

var (
	validRoles = map[string]bool{
		string(domain.RoleFreelancer): true,
		string(domain.RoleClient):     true,
		string(domain.RoleAdmin):      true,
	}
	validProjectStatuses = map[string]bool{
		string(domain.ProjectOpen):       true,
		string(domain.ProjectInProgress): true,
		string(domain.ProjectCompleted):  true,
		string(domain.ProjectCancelled):  true,
	}
)

// ValidateSeedSchema checks the schema before conversion and returns every
// problem found, not just the first.
func ValidateSeedSchema(schema *SeedSchema) []error {
	var errs []error

	roles := make(map[string]string) // user ref -> role
	errs = append(errs, validateUsers(schema.Users, roles)...)

	projects := make(map[string]string) // project ref -> currency
	errs = append(errs, validateProjects(schema.Projects, roles, projects)...)

	errs = append(errs, validateProposals(schema.Proposals, roles, projects)...)
	return errs
}

func validateUsers(users []UserImport, roles map[string]string) []error {
	var errs []error
	emails := make(map[string]bool)

	for i, u := range users {
		prefix := fmt.Sprintf("users[%d]", i)
		if u.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if _, dup := roles[u.Ref]; dup {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, u.Ref))
		}

		if _, err := mail.ParseAddress(u.Email); err != nil {
			errs = append(errs, fmt.Errorf("%s.email: invalid address %q", prefix, u.Email))
		} else if key := strings.ToLower(u.Email); emails[key] {
			errs = append(errs, fmt.Errorf("%s.email: duplicate address %q", prefix, u.Email))
		} else {
			emails[key] = true
		}

		if !validRoles[u.Role] {
			errs = append(errs, fmt.Errorf("%s.role: invalid value %q", prefix, u.Role))
		}
		if u.Status != "" && !domain.ValidUserStatuses[domain.UserStatus(u.Status)] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, u.Status))
		}

		if u.Ref != "" {
			roles[u.Ref] = u.Role
		}
	}
	return errs
}

func validateProjects(projects []ProjectImport, roles map[string]string, refs map[string]string) []error {
	var errs []error

	for i, p := range projects {
		prefix := fmt.Sprintf("projects[%d]", i)
		if p.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if _, dup := refs[p.Ref]; dup {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, p.Ref))
		}

		role, ok := roles[p.ClientRef]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s.client_ref: unknown user %q", prefix, p.ClientRef))
		case role != string(domain.RoleClient):
			errs = append(errs, fmt.Errorf("%s.client_ref: user %q is a %s, not a client", prefix, p.ClientRef, role))
		}

		draft := domain.ProjectDraft{
			Title:     p.Title,
			BudgetMin: p.BudgetMin,
			BudgetMax: p.BudgetMax,
			Currency:  currencyOrDefault(p.Currency),
		}
		if err := draft.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
		if p.Status != "" && !validProjectStatuses[p.Status] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, p.Status))
		}

		if p.Ref != "" {
			refs[p.Ref] = string(draft.Currency)
		}
	}
	return errs
}

func validateProposals(proposals []ProposalImport, roles, projects map[string]string) []error {
	var errs []error
	seen := make(map[[2]string]bool)

	for i, p := range proposals {
		prefix := fmt.Sprintf("proposals[%d]", i)

		if _, ok := projects[p.ProjectRef]; !ok {
			errs = append(errs, fmt.Errorf("%s.project_ref: unknown project %q", prefix, p.ProjectRef))
		}
		role, ok := roles[p.FreelancerRef]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s.freelancer_ref: unknown user %q", prefix, p.FreelancerRef))
		case role != string(domain.RoleFreelancer):
			errs = append(errs, fmt.Errorf("%s.freelancer_ref: user %q is a %s, not a freelancer", prefix, p.FreelancerRef, role))
		}

		key := [2]string{p.ProjectRef, p.FreelancerRef}
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s: %q already has a proposal on %q", prefix, p.FreelancerRef, p.ProjectRef))
		}
		seen[key] = true

		if strings.TrimSpace(p.CoverLetter) == "" {
			errs = append(errs, fmt.Errorf("%s.cover_letter is required", prefix))
		}
		if p.ProposedBudget <= 0 {
			errs = append(errs, fmt.Errorf("%s.proposed_budget must be positive", prefix))
		}
		if p.Currency != "" && !domain.ValidCurrencies[domain.Currency(p.Currency)] {
			errs = append(errs, fmt.Errorf("%s.currency: unsupported %q", prefix, p.Currency))
		}
		errs = append(errs, validateMilestones(prefix, p)...)
	}
	return errs
}

func validateMilestones(prefix string, p ProposalImport) []error {
	if len(p.Milestones) == 0 {
		return nil
	}
	var errs []error
	if p.FreeTextMilestones != "" {
		errs = append(errs, fmt.Errorf("%s: milestones and free_text_milestones are mutually exclusive", prefix))
	}

	var sum float64
	for j, m := range p.Milestones {
		if strings.TrimSpace(m.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.milestones[%d].title is required", prefix, j))
		}
		if m.Amount < 0 {
			errs = append(errs, fmt.Errorf("%s.milestones[%d].amount must not be negative", prefix, j))
		}
		if m.DurationDays < 0 {
			errs = append(errs, fmt.Errorf("%s.milestones[%d].duration_days must not be negative", prefix, j))
		}
		sum += m.Amount
	}
	if math.Abs(sum-p.ProposedBudget) >= 0.005 {
		errs = append(errs, fmt.Errorf("%s.milestones: amounts total %.2f, proposed budget is %.2f", prefix, sum, p.ProposedBudget))
	}
	return errs
}

func currencyOrDefault(c string) domain.Currency {
	if c == "" {
		return domain.CurrencyTWD
	}
	return domain.Currency(c)
}
