package domain

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
	UserBanned    UserStatus = "banned"
)

// ValidUserStatuses is the canonical set of statuses an admin may assign.
var ValidUserStatuses = map[UserStatus]bool{
	UserActive: true, UserSuspended: true, UserBanned: true,
}

type Currency string

const (
	CurrencyTWD Currency = "TWD"
	CurrencyUSD Currency = "USD"
	CurrencyCNY Currency = "CNY"
)

// ValidCurrencies is the canonical set of currencies a budget may use.
var ValidCurrencies = map[Currency]bool{
	CurrencyTWD: true, CurrencyUSD: true, CurrencyCNY: true,
}
