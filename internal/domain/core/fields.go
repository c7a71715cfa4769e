package core

import "scorecard/internal/domain/auth"

// RedactSalary hides the base salary unless the actor may read salaries.
func RedactSalary(emp *Employee, actor auth.Actor, policy *auth.Policy) {
	if policy.Can(actor, auth.CapSalaryRead) {
		return
	}
	emp.BaseSalary = nil
}
