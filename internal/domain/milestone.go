package domain

// Milestone is one deliverable-linked payment in a proposal. Order is
// 1-based and contiguous within its plan.
type Milestone struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	DurationDays int     `json:"durationDays"`
	Order        int     `json:"order"`
}

// MilestonePlan is an ordered decomposition of TotalBudget. The sum of
// amounts may transiently exceed the total while the user edits; see the
// milestone package for the operations that maintain it.
type MilestonePlan struct {
	TotalBudget float64
	Milestones  []Milestone
}
