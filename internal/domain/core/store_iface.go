package core

import "context"

type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (*Employee, error)
	GetEmployeeByUserID(ctx context.Context, userID string) (*Employee, error)
	ListEmployees(ctx context.Context, employeeIDs []string) ([]Employee, error)
	ListByOrgUnit(ctx context.Context, orgUnitID string) ([]Employee, error)
	UpsertEmployee(ctx context.Context, emp Employee) error
	ReplaceParticipations(ctx context.Context, employeeID string, parts []Participation) error
}
