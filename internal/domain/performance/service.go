package performance

import (
	"context"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/core"
	"scorecard/internal/domain/evaluation"
	"scorecard/internal/platform/apperror"
)

type Service struct {
	employees   EmployeeSource
	templates   TemplateSource
	evaluations EvaluationSource
	overrides   OverrideSource
	opts        Options
}

func NewService(employees EmployeeSource, templates TemplateSource, evaluations EvaluationSource, overrides OverrideSource, opts Options) *Service {
	if opts.Mode == "" {
		opts.Mode = ModeOfficial
	}
	return &Service{employees: employees, templates: templates, evaluations: evaluations, overrides: overrides, opts: opts}
}

// ComputeScores aggregates every requested employee for the year. An empty
// id list means all active employees. Inputs are loaded once per call and
// shared across employees.
func (s *Service) ComputeScores(ctx context.Context, req ComputeRequest) (ComputeResult, error) {
	opts, err := s.options(req.Year, req.Mode)
	if err != nil {
		return ComputeResult{}, err
	}
	employees, err := s.employees.ListEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		return ComputeResult{}, err
	}
	if err := checkAllFound(req.EmployeeIDs, employees); err != nil {
		return ComputeResult{}, err
	}
	scores, err := s.aggregate(ctx, employees, req.Year, opts)
	if err != nil {
		return ComputeResult{}, err
	}
	return ComputeResult{Scores: scores, Summary: buildSummary(scores)}, nil
}

// RecomputeAnnual rebuilds one employee's official scores from the full
// evaluation history of the year.
func (s *Service) RecomputeAnnual(ctx context.Context, employeeID string, year int) (EmployeeScore, error) {
	opts, err := s.options(year, ModeOfficial)
	if err != nil {
		return EmployeeScore{}, err
	}
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return EmployeeScore{}, err
	}
	scores, err := s.aggregate(ctx, []core.Employee{*emp}, year, opts)
	if err != nil {
		return EmployeeScore{}, err
	}
	return scores[0], nil
}

func (s *Service) aggregate(ctx context.Context, employees []core.Employee, year int, opts Options) ([]EmployeeScore, error) {
	out := make([]EmployeeScore, 0, len(employees))
	if len(employees) == 0 {
		return out, nil
	}
	templates, err := s.templates.List(ctx, assignment.Filter{Year: year, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	index, err := s.overrides.Index(ctx, year)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(employees))
	for i, emp := range employees {
		ids[i] = emp.ID
	}
	filter := evaluation.Filter{EmployeeIDs: ids, Year: year}
	if opts.Mode == ModeOfficial {
		filter.States = []evaluation.State{evaluation.StateClosed}
	}
	evs, err := s.evaluations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	byEmployee := make(map[string][]evaluation.Evaluation, len(employees))
	for _, ev := range evs {
		byEmployee[ev.EmployeeID] = append(byEmployee[ev.EmployeeID], ev)
	}

	for _, emp := range employees {
		out = append(out, Aggregate(Input{
			Employee:    emp,
			Year:        year,
			Templates:   templates,
			Evaluations: byEmployee[emp.ID],
			Overrides:   index,
		}, opts))
	}
	return out, nil
}

func (s *Service) options(year int, mode Mode) (Options, error) {
	if year < 2000 || year > 2100 {
		return Options{}, apperror.Validation("year", "year must be between 2000 and 2100")
	}
	opts := s.opts
	if mode != "" {
		if !mode.Valid() {
			return Options{}, apperror.Validation("mode", "mode must be official or provisional")
		}
		opts.Mode = mode
	}
	return opts, nil
}

func checkAllFound(requested []string, found []core.Employee) error {
	seen := make(map[string]bool, len(found))
	for _, emp := range found {
		seen[emp.ID] = true
	}
	for _, id := range requested {
		if !seen[id] {
			return apperror.New(apperror.CodeNotFound, "employee "+id+" not found")
		}
	}
	return nil
}
