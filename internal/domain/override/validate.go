package override

import (
	"strings"

	"scorecard/internal/platform/apperror"
)

func Validate(o Override) error {
	if o.Year < 2000 || o.Year > 2100 {
		return apperror.Validation("year", "must be a fiscal year between 2000 and 2100")
	}
	if strings.TrimSpace(o.TemplateID) == "" {
		return apperror.Validation("templateId", "template id is required")
	}
	if (o.EmployeeID == "") == (o.OrgUnitID == "") {
		return apperror.Validation("employeeId", "exactly one of employeeId or orgUnitId is required")
	}
	if !o.Excluded && o.Weight == nil {
		return apperror.Validation("weight", "an override must exclude the assignment or replace its weight")
	}
	if o.Weight != nil && (*o.Weight < 0 || *o.Weight > 100) {
		return apperror.Validation("weight", "must be between 0 and 100")
	}
	return nil
}
