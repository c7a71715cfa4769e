package bonus

import "scorecard/internal/platform/apperror"

var (
	ErrConfigNotFound = apperror.NotFound("bonus configuration")
	ErrResultNotFound = apperror.NotFound("bonus result")
	ErrMissingSalary  = apperror.Validation("baseSalary", "employee has no base salary on record")
	ErrForbidden      = apperror.Forbidden("actor may not access this bonus")
)
