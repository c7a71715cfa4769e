package assignment

import "scorecard/internal/platform/apperror"

var ErrTemplateNotFound = apperror.NotFound("assignment template")
