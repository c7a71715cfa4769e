package bonus

import (
	"context"
	"log/slog"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/core"
	"scorecard/internal/domain/performance"
	"scorecard/internal/platform/apperror"
	"scorecard/internal/platform/jobs"
)

// CalculateBatch computes and stores the bonus of every selected employee
// from their official global score. Selection is by explicit ids, by
// organizational unit, or all active employees. A failing employee is
// reported and skipped; the batch is safe to re-run.
func (s *Service) CalculateBatch(ctx context.Context, actor auth.Actor, req BatchRequest) (BatchResult, error) {
	if !s.policy.Can(actor, auth.CapBonusCalculate) {
		return BatchResult{}, ErrForbidden
	}
	if req.Year < 2000 || req.Year > 2100 {
		return BatchResult{}, apperror.Validation("year", "year must be between 2000 and 2100")
	}
	if req.OrgUnitID != "" && len(req.EmployeeIDs) > 0 {
		return BatchResult{}, apperror.Validation("employeeIds", "employeeIds cannot be combined with orgUnitId")
	}
	cfg, err := s.store.GetConfig(ctx, req.Year)
	if err != nil {
		return BatchResult{}, err
	}

	run := func(ctx context.Context) (any, error) {
		return s.calculate(ctx, *cfg, req)
	}
	var out any
	if s.jobs == nil {
		out, err = run(ctx)
	} else {
		out, err = s.jobs.RunNow(ctx, jobs.JobBonusBatch, actor.UserID, run)
	}
	if err != nil {
		return BatchResult{}, err
	}
	result := out.(BatchResult)
	if s.metrics != nil {
		s.metrics.BonusComputed(result.Count, result.Failed)
	}
	return result, nil
}

func (s *Service) selectEmployees(ctx context.Context, req BatchRequest) ([]core.Employee, error) {
	if req.OrgUnitID != "" {
		return s.employees.ListByOrgUnit(ctx, req.OrgUnitID)
	}
	return s.employees.ListEmployees(ctx, req.EmployeeIDs)
}

func (s *Service) calculate(ctx context.Context, cfg Config, req BatchRequest) (BatchResult, error) {
	result := BatchResult{Year: req.Year, Sample: []Result{}, Failures: []ItemFailure{}}
	employees, err := s.selectEmployees(ctx, req)
	if err != nil {
		return BatchResult{}, err
	}
	result.failMissing(ctx, req.EmployeeIDs, employees)
	if len(employees) == 0 {
		return result, nil
	}

	ids := make([]string, len(employees))
	for i, emp := range employees {
		ids[i] = emp.ID
	}
	scored, err := s.scores.ComputeScores(ctx, performance.ComputeRequest{EmployeeIDs: ids, Year: req.Year, Mode: performance.ModeOfficial})
	if err != nil {
		return BatchResult{}, err
	}
	globals := make(map[string]float64, len(scored.Scores))
	for _, sc := range scored.Scores {
		globals[sc.EmployeeID] = sc.Global
	}

	now := s.now()
	computed := make([]Result, 0, len(employees))
	for _, emp := range employees {
		r, err := Compute(cfg, emp, globals[emp.ID], now)
		if err != nil {
			result.fail(ctx, emp.ID, err)
			continue
		}
		computed = append(computed, r)
	}

	stored := s.persist(ctx, computed, &result)
	result.Count = len(stored)
	for i := 0; i < len(stored) && i < s.sampleSize; i++ {
		result.Sample = append(result.Sample, stored[i])
	}
	return result, nil
}

// persist writes the results as one batch. If the batch fails each result
// is retried on its own so one bad row does not lose the others.
func (s *Service) persist(ctx context.Context, computed []Result, result *BatchResult) []Result {
	if len(computed) == 0 {
		return computed
	}
	err := s.store.UpsertResults(ctx, computed)
	if err == nil {
		return computed
	}
	slog.WarnContext(ctx, "bonus batch upsert failed, retrying per employee", "count", len(computed), "err", err)

	stored := make([]Result, 0, len(computed))
	for _, r := range computed {
		if err := s.store.UpsertResult(ctx, r); err != nil {
			result.fail(ctx, r.EmployeeID, err)
			continue
		}
		stored = append(stored, r)
	}
	return stored
}

// failMissing reports every requested id the store did not return.
func (r *BatchResult) failMissing(ctx context.Context, requested []string, found []core.Employee) {
	if len(requested) == 0 {
		return
	}
	seen := make(map[string]bool, len(found)+len(requested))
	for _, emp := range found {
		seen[emp.ID] = true
	}
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		r.fail(ctx, id, core.ErrEmployeeNotFound)
	}
}

func (r *BatchResult) fail(ctx context.Context, employeeID string, err error) {
	slog.WarnContext(ctx, "bonus calculation failed", "employeeId", employeeID, "err", err)
	r.Failed++
	r.Failures = append(r.Failures, ItemFailure{EmployeeID: employeeID, Code: string(apperror.GetCode(err)), Error: err.Error()})
}
