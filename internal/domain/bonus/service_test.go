package bonus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/core"
	"scorecard/internal/domain/performance"
	"scorecard/internal/platform/apperror"
	"scorecard/internal/platform/jobs"
)

type memoryStore struct {
	configs    map[int]Config
	results    map[string]Result
	batchErr   error
	rejectItem string
	batches    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{configs: map[int]Config{}, results: map[string]Result{}}
}

func resultKey(employeeID string, year int) string {
	return fmt.Sprintf("%s/%d", employeeID, year)
}

func (m *memoryStore) PutConfig(_ context.Context, cfg Config) error {
	m.configs[cfg.Year] = cfg
	return nil
}

func (m *memoryStore) GetConfig(_ context.Context, year int) (*Config, error) {
	cfg, ok := m.configs[year]
	if !ok {
		return nil, ErrConfigNotFound
	}
	return &cfg, nil
}

func (m *memoryStore) UpsertResults(ctx context.Context, results []Result) error {
	m.batches++
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, r := range results {
		if err := m.UpsertResult(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryStore) UpsertResult(_ context.Context, r Result) error {
	if r.EmployeeID == m.rejectItem {
		return errors.New("numeric field overflow")
	}
	m.results[resultKey(r.EmployeeID, r.Year)] = r
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, employeeID string, year int) (*Result, error) {
	r, ok := m.results[resultKey(employeeID, year)]
	if !ok {
		return nil, ErrResultNotFound
	}
	return &r, nil
}

func (m *memoryStore) ListResults(_ context.Context, year int) ([]Result, error) {
	var out []Result
	for _, r := range m.results {
		if r.Year == year {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

type fakeEmployees []core.Employee

func (f fakeEmployees) GetEmployee(_ context.Context, id string) (*core.Employee, error) {
	for _, emp := range f {
		if emp.ID == id {
			e := emp
			return &e, nil
		}
	}
	return nil, core.ErrEmployeeNotFound
}

func (f fakeEmployees) ListEmployees(_ context.Context, ids []string) ([]core.Employee, error) {
	if len(ids) == 0 {
		return f, nil
	}
	var out []core.Employee
	for _, emp := range f {
		for _, id := range ids {
			if emp.ID == id {
				out = append(out, emp)
			}
		}
	}
	return out, nil
}

func (f fakeEmployees) ListByOrgUnit(_ context.Context, unit string) ([]core.Employee, error) {
	var out []core.Employee
	for _, emp := range f {
		if emp.OrgUnitID == unit {
			out = append(out, emp)
		}
	}
	return out, nil
}

type fakeScores map[string]float64

func (f fakeScores) ComputeScores(_ context.Context, req performance.ComputeRequest) (performance.ComputeResult, error) {
	var out performance.ComputeResult
	for _, id := range req.EmployeeIDs {
		out.Scores = append(out.Scores, performance.EmployeeScore{EmployeeID: id, Year: req.Year, Mode: req.Mode, Global: f[id]})
	}
	return out, nil
}

type fakeMetrics struct{ ok, failed int }

func (f *fakeMetrics) BonusComputed(ok, failed int) { f.ok += ok; f.failed += failed }

type fakeJobs struct{ ran []string }

func (f *fakeJobs) RunNow(ctx context.Context, jobType, _ string, run func(context.Context) (any, error)) (any, error) {
	f.ran = append(f.ran, jobType)
	return run(ctx)
}

type recordedAudit struct {
	actions []string
}

func (r *recordedAudit) Record(_ context.Context, _, action, _, _ string, _, _ any) error {
	r.actions = append(r.actions, action)
	return nil
}

var (
	hrActor       = auth.Actor{UserID: "hr", Role: auth.RoleHR}
	employeeActor = auth.Actor{UserID: "u-a", EmployeeID: "a", Role: auth.RoleEmployee}
)

type fixture struct {
	svc     *Service
	store   *memoryStore
	metrics *fakeMetrics
	jobs    *fakeJobs
	audit   *recordedAudit
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	noSalary := core.Employee{ID: "c", Name: "No Salary", OrgUnitID: "ops", Active: true}
	employees := fakeEmployees{
		employeeWithSalary("a", "sales", "1000000"),
		employeeWithSalary("b", "sales", "50000"),
		noSalary,
		employeeWithSalary("d", "ops", "60000"),
	}
	f := fixture{store: newMemoryStore(), metrics: &fakeMetrics{}, jobs: &fakeJobs{}, audit: &recordedAudit{}}
	f.store.configs[2024] = Config{Year: 2024, Scale: linear(), TargetMultiple: 1}
	clock := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	f.svc = NewService(f.store, employees, fakeScores{"a": 80, "b": 100, "c": 90, "d": 50}, auth.DefaultPolicy(),
		WithMetrics(f.metrics), WithJobs(f.jobs), WithAudit(f.audit), WithSampleSize(2),
		WithClock(func() time.Time { return clock }))
	return f
}

func TestCalculateBatchContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.CalculateBatch(context.Background(), hrActor, BatchRequest{Year: 2024})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Count)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "c", res.Failures[0].EmployeeID)
	assert.Equal(t, string(apperror.CodeValidation), res.Failures[0].Code)
	assert.Len(t, res.Sample, 2)
	assert.Equal(t, []string{jobs.JobBonusBatch}, f.jobs.ran)
	assert.Equal(t, 3, f.metrics.ok)
	assert.Equal(t, 1, f.metrics.failed)

	a, err := f.svc.GetResult(context.Background(), hrActor, "a", 2024)
	require.NoError(t, err)
	assert.Equal(t, "150000", a.Amount.String())
	d, err := f.svc.GetResult(context.Background(), hrActor, "d", 2024)
	require.NoError(t, err)
	assert.True(t, d.Amount.IsZero())
}

func TestCalculateBatchIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CalculateBatch(ctx, hrActor, BatchRequest{Year: 2024, OrgUnitID: "sales"})
	require.NoError(t, err)
	_, err = f.svc.CalculateBatch(ctx, hrActor, BatchRequest{Year: 2024, OrgUnitID: "sales"})
	require.NoError(t, err)

	all, err := f.svc.ListResults(ctx, hrActor, 2024)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].EmployeeID)
	assert.Equal(t, "b", all[1].EmployeeID)
}

func TestCalculateBatchFallsBackPerItem(t *testing.T) {
	f := newFixture(t)
	f.store.batchErr = errors.New("batch aborted")
	f.store.rejectItem = "b"

	res, err := f.svc.CalculateBatch(context.Background(), hrActor, BatchRequest{Year: 2024, EmployeeIDs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "b", res.Failures[0].EmployeeID)
	assert.Equal(t, string(apperror.CodeInternal), res.Failures[0].Code)
	assert.Equal(t, 1, f.store.batches)
}

func TestCalculateBatchReportsUnknownEmployees(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.CalculateBatch(context.Background(), hrActor, BatchRequest{Year: 2024, EmployeeIDs: []string{"a", "ghost", "ghost"}})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "ghost", res.Failures[0].EmployeeID)
	assert.Equal(t, string(apperror.CodeNotFound), res.Failures[0].Code)
	assert.Equal(t, 1, f.metrics.failed)
}

func TestCalculateBatchRejectsIdsWithOrgUnit(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CalculateBatch(context.Background(), hrActor, BatchRequest{Year: 2024, OrgUnitID: "sales", EmployeeIDs: []string{"d"}})
	require.Error(t, err)
	assert.Equal(t, "employeeIds", apperror.FieldOf(err))
	assert.Empty(t, f.jobs.ran)
}

func TestCalculateBatchRequiresConfigAndCapability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CalculateBatch(ctx, employeeActor, BatchRequest{Year: 2024})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CalculateBatch(ctx, hrActor, BatchRequest{Year: 2023})
	assert.ErrorIs(t, err, ErrConfigNotFound)

	_, err = f.svc.CalculateBatch(ctx, hrActor, BatchRequest{Year: 20})
	assert.Equal(t, "year", apperror.FieldOf(err))
}

func TestPutConfigValidatesAndAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.PutConfig(ctx, hrActor, Config{Year: 2025, Scale: tiered(), TargetMultiple: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "hr", saved.UpdatedBy)
	assert.NotNil(t, saved.Overrides)
	assert.Equal(t, []string{"bonus.config.put"}, f.audit.actions)

	got, err := f.svc.GetConfig(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, ScaleTiered, got.Scale.Kind)

	_, err = f.svc.PutConfig(ctx, hrActor, Config{Year: 2025, Scale: Scale{Kind: "step"}})
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	manager := auth.Actor{UserID: "m", Role: auth.RoleManager}
	_, err = f.svc.PutConfig(ctx, manager, Config{Year: 2025, Scale: linear()})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResultVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CalculateBatch(ctx, hrActor, BatchRequest{Year: 2024})
	require.NoError(t, err)

	own, err := f.svc.GetResult(ctx, employeeActor, "a", 2024)
	require.NoError(t, err)
	assert.Equal(t, "a", own.EmployeeID)

	_, err = f.svc.GetResult(ctx, employeeActor, "b", 2024)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ListResults(ctx, employeeActor, 2024)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStatementRendersPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CalculateBatch(ctx, hrActor, BatchRequest{Year: 2024})
	require.NoError(t, err)

	out, err := f.svc.Statement(ctx, employeeActor, "a", 2024)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = f.svc.Statement(ctx, hrActor, "a", 2023)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestDescribeScale(t *testing.T) {
	assert.Equal(t, "tiered (0+ pays 0, 70+ pays 0.1, 85+ pays 0.2, 95+ pays 0.3)", describeScale(tiered()))
	assert.Equal(t, " [org unit override]", sourceSuffix("org_unit"))
	assert.Equal(t, "", sourceSuffix(""))
}
