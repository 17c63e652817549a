// Package milestone implements the budget allocator behind structured
// proposal payments. Every function is pure: it returns a new plan and never
// mutates its input.
package milestone

import (
	"errors"
	"fmt"
	"math"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrBudgetExhausted rejects Add when nothing remains to allocate.
	ErrBudgetExhausted = errors.New("milestone budget fully allocated")

	// ErrIndexOutOfRange is returned for a milestone index outside the plan.
	ErrIndexOutOfRange = errors.New("milestone index out of range")

	// ErrInvalidValue is returned when Update receives a value of the wrong
	// type or range for the field.
	ErrInvalidValue = errors.New("invalid milestone value")

	// ErrOverBudget rejects a plan whose amounts exceed the total at submit time.
	ErrOverBudget = errors.New("milestone amounts exceed total budget")

	// ErrEmptyPlan rejects a structured submission with no milestones.
	ErrEmptyPlan = errors.New("structured plan has no milestones")
)

// newID is swapped in tests that need deterministic ids.
var newID = func() string { return uuid.New().String() }

// Field names an editable milestone field.
type Field string

const (
	FieldTitle        Field = "title"
	FieldDescription  Field = "description"
	FieldAmount       Field = "amount"
	FieldDurationDays Field = "durationDays"
)

// NewPlan returns an empty plan for total.
func NewPlan(total float64) domain.MilestonePlan {
	return domain.MilestonePlan{TotalBudget: roundCents(total)}
}

// Allocated is the sum of milestone amounts, recomputed on every call.
func Allocated(plan domain.MilestonePlan) float64 {
	var sum float64
	for _, m := range plan.Milestones {
		sum += m.Amount
	}
	return roundCents(sum)
}

// Remaining is TotalBudget minus Allocated. It is negative while the plan
// overshoots.
func Remaining(plan domain.MilestonePlan) float64 {
	return roundCents(plan.TotalBudget - Allocated(plan))
}

// Overshoot is how far Allocated exceeds TotalBudget, or zero.
func Overshoot(plan domain.MilestonePlan) float64 {
	if r := Remaining(plan); r < 0 {
		return -r
	}
	return 0
}

// Add appends a milestone pre-filled with the remaining budget and the next
// order. With a positive total and nothing remaining it rejects with
// ErrBudgetExhausted and returns the plan unchanged.
func Add(plan domain.MilestonePlan) (domain.MilestonePlan, error) {
	remaining := Remaining(plan)
	if plan.TotalBudget > 0 && remaining <= 0 {
		return plan, fmt.Errorf("%w: %.2f of %.2f allocated", ErrBudgetExhausted, Allocated(plan), plan.TotalBudget)
	}

	amount := remaining
	if amount < 0 {
		amount = 0
	}

	next := clone(plan)
	next.Milestones = append(next.Milestones, domain.Milestone{
		ID:     newID(),
		Amount: amount,
		Order:  len(plan.Milestones) + 1,
	})
	return next, nil
}

// Remove deletes the milestone at index and renumbers the rest 1..n.
func Remove(plan domain.MilestonePlan, index int) (domain.MilestonePlan, error) {
	if index < 0 || index >= len(plan.Milestones) {
		return plan, fmt.Errorf("%w: %d (plan has %d)", ErrIndexOutOfRange, index, len(plan.Milestones))
	}

	next := domain.MilestonePlan{TotalBudget: plan.TotalBudget}
	next.Milestones = make([]domain.Milestone, 0, len(plan.Milestones)-1)
	for i, m := range plan.Milestones {
		if i == index {
			continue
		}
		m.Order = len(next.Milestones) + 1
		next.Milestones = append(next.Milestones, m)
	}
	return next, nil
}

// Update replaces one field of the milestone at index. Siblings, order and
// the total are left as they are, so an amount edit may overshoot.
func Update(plan domain.MilestonePlan, index int, field Field, value any) (domain.MilestonePlan, error) {
	if index < 0 || index >= len(plan.Milestones) {
		return plan, fmt.Errorf("%w: %d (plan has %d)", ErrIndexOutOfRange, index, len(plan.Milestones))
	}

	next := clone(plan)
	m := &next.Milestones[index]

	switch field {
	case FieldTitle:
		s, ok := value.(string)
		if !ok {
			return plan, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidValue, field, value)
		}
		m.Title = s
	case FieldDescription:
		s, ok := value.(string)
		if !ok {
			return plan, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidValue, field, value)
		}
		m.Description = s
	case FieldAmount:
		f, ok := toFloat(value)
		if !ok || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return plan, fmt.Errorf("%w: amount must be a non-negative number, got %v", ErrInvalidValue, value)
		}
		m.Amount = roundCents(f)
	case FieldDurationDays:
		n, ok := value.(int)
		if !ok || n < 0 {
			return plan, fmt.Errorf("%w: durationDays must be a non-negative int, got %v", ErrInvalidValue, value)
		}
		m.DurationDays = n
	default:
		return plan, fmt.Errorf("%w: unknown field %q", ErrInvalidValue, field)
	}
	return next, nil
}

// SetTotal changes the total budget without touching any milestone.
func SetTotal(plan domain.MilestonePlan, total float64) domain.MilestonePlan {
	next := clone(plan)
	next.TotalBudget = roundCents(total)
	return next
}

// ValidateForSubmit rejects plans that cannot be sent as structured
// milestones: empty plans, overshooting plans and broken ordering.
func ValidateForSubmit(plan domain.MilestonePlan) error {
	if len(plan.Milestones) == 0 {
		return ErrEmptyPlan
	}
	if over := Overshoot(plan); over > 0 {
		return fmt.Errorf("%w by %.2f", ErrOverBudget, over)
	}
	for i, m := range plan.Milestones {
		if m.Order != i+1 {
			return fmt.Errorf("%w: milestone %d has order %d", ErrInvalidValue, i, m.Order)
		}
		if m.Amount < 0 {
			return fmt.Errorf("%w: milestone %d has negative amount", ErrInvalidValue, i)
		}
	}
	return nil
}

func clone(plan domain.MilestonePlan) domain.MilestonePlan {
	out := domain.MilestonePlan{TotalBudget: plan.TotalBudget}
	if plan.Milestones != nil {
		out.Milestones = make([]domain.Milestone, len(plan.Milestones), len(plan.Milestones)+1)
		copy(out.Milestones, plan.Milestones)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
