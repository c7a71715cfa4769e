package core

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/platform/apperror"
)

type memoryStore struct {
	employees map[string]Employee
	parts     map[string][]Participation
}

func newMemoryStore() *memoryStore {
	return &memoryStore{employees: map[string]Employee{}, parts: map[string][]Participation{}}
}

func (m *memoryStore) GetEmployee(_ context.Context, id string) (*Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	emp.Participations = m.parts[id]
	return &emp, nil
}

func (m *memoryStore) GetEmployeeByUserID(_ context.Context, userID string) (*Employee, error) {
	for _, emp := range m.employees {
		if emp.UserID == userID {
			return &emp, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (m *memoryStore) ListEmployees(_ context.Context, ids []string) ([]Employee, error) {
	var out []Employee
	for _, id := range ids {
		if emp, ok := m.employees[id]; ok {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (m *memoryStore) ListByOrgUnit(_ context.Context, orgUnitID string) ([]Employee, error) {
	var out []Employee
	for _, emp := range m.employees {
		if emp.OrgUnitID == orgUnitID {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (m *memoryStore) UpsertEmployee(_ context.Context, emp Employee) error {
	m.employees[emp.ID] = emp
	return nil
}

func (m *memoryStore) ReplaceParticipations(_ context.Context, id string, parts []Participation) error {
	m.parts[id] = parts
	return nil
}

func TestSaveEmployeeStoresParticipations(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	salary := decimal.NewFromInt(50000)

	err := svc.SaveEmployee(context.Background(), Employee{
		ID: "e1", Name: "Ana", OrgUnitID: "ou1", BaseSalary: &salary,
		Participations: []Participation{{SubUnitID: "s1", Percent: 60}, {SubUnitID: "s2", Percent: 40}},
	})
	require.NoError(t, err)

	emp, err := svc.GetEmployee(context.Background(), "e1")
	require.NoError(t, err)
	share, ok := emp.ParticipationShare("s1")
	assert.True(t, ok)
	assert.InDelta(t, 0.6, share, 1e-9)
	assert.True(t, emp.InSubUnit("s2"))
	assert.False(t, emp.InSubUnit("s3"))
	assert.True(t, salary.Equal(emp.Salary()))
}

func TestValidateEmployee(t *testing.T) {
	base := Employee{ID: "e1", Name: "Ana", OrgUnitID: "ou1"}
	require.NoError(t, ValidateEmployee(base))

	noUnit := base
	noUnit.OrgUnitID = ""
	assert.Equal(t, "orgUnitId", apperror.FieldOf(ValidateEmployee(noUnit)))

	over := base
	over.Participations = []Participation{{SubUnitID: "s1", Percent: 70}, {SubUnitID: "s2", Percent: 40}}
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(ValidateEmployee(over)))

	dup := base
	dup.Participations = []Participation{{SubUnitID: "s1", Percent: 10}, {SubUnitID: "s1", Percent: 10}}
	assert.Error(t, ValidateEmployee(dup))

	negative := base
	n := decimal.NewFromInt(-1)
	negative.BaseSalary = &n
	assert.Equal(t, "baseSalary", apperror.FieldOf(ValidateEmployee(negative)))
}

func TestGetMissingEmployee(t *testing.T) {
	_, err := NewService(newMemoryStore()).GetEmployee(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
}
