package override

import "scorecard/internal/platform/apperror"

var ErrOverrideNotFound = apperror.NotFound("override")
