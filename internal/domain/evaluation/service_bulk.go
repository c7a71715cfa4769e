package evaluation

import (
	"context"
	"log/slog"
	"strings"

	"scorecard/internal/domain/auth"
	"scorecard/internal/platform/apperror"
	"scorecard/internal/platform/jobs"
)

// BulkClose closes every matching PENDING_HR evaluation independently. A
// failing item is reported and never blocks the others. Explicit ids that
// are not pending HR closure are reported as failures; filter matches only
// consider pending evaluations.
func (s *Service) BulkClose(ctx context.Context, actor auth.Actor, req BulkCloseRequest) (BulkCloseResult, error) {
	if !s.policy.Can(actor, auth.CapEvaluationBulkClose) {
		return BulkCloseResult{}, &GuardError{Action: ActionClose, Reason: "missing capability " + string(auth.CapEvaluationBulkClose)}
	}
	filter, err := bulkFilter(req)
	if err != nil {
		return BulkCloseResult{}, err
	}

	run := func(ctx context.Context) (any, error) {
		return s.bulkClose(ctx, actor, filter, req), nil
	}
	if s.jobs == nil {
		out, _ := run(ctx)
		return out.(BulkCloseResult), nil
	}
	out, err := s.jobs.RunNow(ctx, jobs.JobBulkClose, actor.UserID, run)
	if err != nil {
		return BulkCloseResult{}, err
	}
	return out.(BulkCloseResult), nil
}

func bulkFilter(req BulkCloseRequest) (Filter, error) {
	if len(req.IDs) > 0 {
		return Filter{IDs: req.IDs}, nil
	}
	if strings.TrimSpace(req.PeriodCode) == "" || strings.TrimSpace(req.TemplateID) == "" {
		return Filter{}, apperror.Validation("ids", "provide ids or both periodCode and templateId")
	}
	return Filter{PeriodCode: req.PeriodCode, TemplateID: req.TemplateID, States: []State{StatePendingHR}}, nil
}

func (s *Service) bulkClose(ctx context.Context, actor auth.Actor, filter Filter, req BulkCloseRequest) BulkCloseResult {
	result := BulkCloseResult{ClosedIDs: []string{}, Failures: []ItemFailure{}}
	candidates, err := s.store.ListEvaluations(ctx, filter)
	if err != nil {
		result.Failures = append(result.Failures, ItemFailure{Code: string(apperror.GetCode(err)), Error: err.Error()})
		return result
	}

	found := make(map[string]bool, len(candidates))
	for _, ev := range candidates {
		found[ev.ID] = true
	}
	for _, id := range req.IDs {
		if !found[id] {
			result.Failures = append(result.Failures, ItemFailure{ID: id, Code: string(apperror.CodeNotFound), Error: ErrEvaluationNotFound.Error()})
		}
	}

	result.Matched = len(candidates)
	payload := Payload{HRComment: req.HRComment, Note: "bulk close"}
	for _, ev := range candidates {
		if ctx.Err() != nil {
			result.Failures = append(result.Failures, ItemFailure{ID: ev.ID, Code: string(apperror.CodeInternal), Error: ctx.Err().Error()})
			continue
		}
		if _, err := s.transition(ctx, ev, ActionClose, actor, payload); err != nil {
			slog.WarnContext(ctx, "bulk close item failed", "evaluationId", ev.ID, "err", err)
			result.Failures = append(result.Failures, ItemFailure{ID: ev.ID, Code: string(apperror.GetCode(err)), Error: err.Error()})
			continue
		}
		result.Closed++
		result.ClosedIDs = append(result.ClosedIDs, ev.ID)
	}
	return result
}
