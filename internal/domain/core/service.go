package core

import (
	"context"
	"fmt"
	"strings"

	"scorecard/internal/platform/apperror"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) GetEmployeeByUserID(ctx context.Context, userID string) (*Employee, error) {
	return s.store.GetEmployeeByUserID(ctx, userID)
}

func (s *Service) ListEmployees(ctx context.Context, employeeIDs []string) ([]Employee, error) {
	return s.store.ListEmployees(ctx, employeeIDs)
}

func (s *Service) ListByOrgUnit(ctx context.Context, orgUnitID string) ([]Employee, error) {
	return s.store.ListByOrgUnit(ctx, orgUnitID)
}

// SaveEmployee validates and stores an employee together with its sub-unit
// participations.
func (s *Service) SaveEmployee(ctx context.Context, emp Employee) error {
	if err := ValidateEmployee(emp); err != nil {
		return err
	}
	if err := s.store.UpsertEmployee(ctx, emp); err != nil {
		return err
	}
	return s.store.ReplaceParticipations(ctx, emp.ID, emp.Participations)
}

func ValidateEmployee(emp Employee) error {
	if strings.TrimSpace(emp.ID) == "" {
		return apperror.Validation("id", "employee id is required")
	}
	if strings.TrimSpace(emp.Name) == "" {
		return apperror.Validation("name", "name is required")
	}
	if strings.TrimSpace(emp.OrgUnitID) == "" {
		return apperror.Validation("orgUnitId", "organizational unit is required")
	}
	if emp.BaseSalary != nil && emp.BaseSalary.IsNegative() {
		return apperror.Validation("baseSalary", "must not be negative")
	}
	var total float64
	seen := map[string]bool{}
	for _, p := range emp.Participations {
		if p.SubUnitID == "" {
			return apperror.Validation("participations", "sub-unit id is required")
		}
		if seen[p.SubUnitID] {
			return apperror.Validation("participations", fmt.Sprintf("duplicate sub-unit %s", p.SubUnitID))
		}
		seen[p.SubUnitID] = true
		if p.Percent <= 0 || p.Percent > 100 {
			return apperror.Validation("participations", "percent must be in (0, 100]")
		}
		total += p.Percent
	}
	if total > 100.0001 {
		return apperror.Validation("participations", "percentages exceed 100")
	}
	return nil
}
