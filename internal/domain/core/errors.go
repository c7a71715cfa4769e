package core

import "scorecard/internal/platform/apperror"

var ErrEmployeeNotFound = apperror.NotFound("employee")
