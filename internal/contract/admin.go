package contract

import "github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"

type UpdateUserStatusResult struct {
	UserID  string
	Status  domain.UserStatus
	Changed bool
	Notice  Notice
}

type CreateProjectResult struct {
	Project *domain.Project
	Created bool
	Notice  Notice
}
