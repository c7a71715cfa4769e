package performance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/core"
	"scorecard/internal/domain/evaluation"
	"scorecard/internal/domain/override"
	"scorecard/internal/platform/apperror"
)

type fakeEmployees struct {
	employees []core.Employee
}

func (f fakeEmployees) GetEmployee(_ context.Context, id string) (*core.Employee, error) {
	for _, emp := range f.employees {
		if emp.ID == id {
			e := emp
			return &e, nil
		}
	}
	return nil, core.ErrEmployeeNotFound
}

func (f fakeEmployees) ListEmployees(_ context.Context, ids []string) ([]core.Employee, error) {
	if len(ids) == 0 {
		return f.employees, nil
	}
	var out []core.Employee
	for _, id := range ids {
		for _, emp := range f.employees {
			if emp.ID == id {
				out = append(out, emp)
			}
		}
	}
	return out, nil
}

type fakeTemplates []assignment.Template

func (f fakeTemplates) List(context.Context, assignment.Filter) ([]assignment.Template, error) {
	return f, nil
}

type fakeEvaluations struct {
	evaluations []evaluation.Evaluation
	filters     []evaluation.Filter
}

func (f *fakeEvaluations) List(_ context.Context, filter evaluation.Filter) ([]evaluation.Evaluation, error) {
	f.filters = append(f.filters, filter)
	var out []evaluation.Evaluation
	for _, ev := range f.evaluations {
		if len(filter.States) > 0 && ev.State != filter.States[0] {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type fakeOverrides []override.Override

func (f fakeOverrides) Index(_ context.Context, year int) (*override.Index, error) {
	return override.NewIndex(year, f), nil
}

func newTestService(evs *fakeEvaluations) *Service {
	other := core.Employee{ID: "emp-2", OrgUnitID: "unit-b", Active: true}
	return NewService(fakeEmployees{employees: []core.Employee{fixtureEmployee(), other}}, fakeTemplates(fixtureTemplates()), evs, fakeOverrides(nil), DefaultOptions())
}

func TestComputeScoresOfficial(t *testing.T) {
	evs := &fakeEvaluations{evaluations: fixtureEvaluations()}
	svc := newTestService(evs)

	res, err := svc.ComputeScores(context.Background(), ComputeRequest{Year: 2024})
	require.NoError(t, err)
	require.Len(t, res.Scores, 2)
	assert.Equal(t, 80.9, res.Scores[0].Global)
	assert.Empty(t, res.Scores[1].Items)

	require.Len(t, evs.filters, 1)
	assert.Equal(t, []evaluation.State{evaluation.StateClosed}, evs.filters[0].States)
	assert.Equal(t, []string{"emp-1", "emp-2"}, evs.filters[0].EmployeeIDs)

	assert.Equal(t, 2, res.Summary.Employees)
	assert.Equal(t, 1, res.Summary.Scored)
	assert.Equal(t, 80.9, res.Summary.Average)
	assert.Equal(t, map[string]int{"70+": 1}, res.Summary.Distribution)
}

func TestComputeScoresProvisional(t *testing.T) {
	evs := &fakeEvaluations{evaluations: fixtureEvaluations()}
	res, err := newTestService(evs).ComputeScores(context.Background(), ComputeRequest{EmployeeIDs: []string{"emp-1"}, Year: 2024, Mode: ModeProvisional})
	require.NoError(t, err)
	require.Len(t, res.Scores, 1)
	assert.Equal(t, ModeProvisional, res.Scores[0].Mode)
	assert.Equal(t, 80.5, res.Scores[0].Global)
	assert.Empty(t, evs.filters[0].States)
}

func TestComputeScoresValidation(t *testing.T) {
	svc := newTestService(&fakeEvaluations{})
	ctx := context.Background()

	_, err := svc.ComputeScores(ctx, ComputeRequest{Year: 1999})
	assert.Equal(t, "year", apperror.FieldOf(err))

	_, err = svc.ComputeScores(ctx, ComputeRequest{Year: 2024, Mode: "draft"})
	assert.Equal(t, "mode", apperror.FieldOf(err))

	_, err = svc.ComputeScores(ctx, ComputeRequest{Year: 2024, EmployeeIDs: []string{"emp-1", "ghost"}})
	assert.Equal(t, apperror.CodeNotFound, apperror.GetCode(err))
}

func TestRecomputeAnnual(t *testing.T) {
	svc := newTestService(&fakeEvaluations{evaluations: fixtureEvaluations()})

	score, err := svc.RecomputeAnnual(context.Background(), "emp-1", 2024)
	require.NoError(t, err)
	assert.Equal(t, ModeOfficial, score.Mode)
	assert.Equal(t, 81.25, score.Objectives.Score)
	assert.Equal(t, 80.0, score.Aptitudes.Score)
	assert.Equal(t, 80.9, score.Global)

	_, err = svc.RecomputeAnnual(context.Background(), "ghost", 2024)
	assert.ErrorIs(t, err, core.ErrEmployeeNotFound)
}

func TestBucketOf(t *testing.T) {
	assert.Equal(t, "0+", bucketOf(12))
	assert.Equal(t, "85+", bucketOf(85))
	assert.Equal(t, "100+", bucketOf(110))
}
