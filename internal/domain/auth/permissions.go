package auth

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

type Capability string

const (
	CapEvaluationEdit      Capability = "evaluation.edit"
	CapEvaluationClose     Capability = "evaluation.close"
	CapEvaluationReopen    Capability = "evaluation.reopen"
	CapEvaluationBulkClose Capability = "evaluation.bulk_close"
	CapEvaluationRead      Capability = "evaluation.read"
	CapScoresRead          Capability = "scores.read"
	CapScoresRecompute     Capability = "scores.recompute"
	CapTemplatesWrite      Capability = "templates.write"
	CapOverridesWrite      Capability = "overrides.write"
	CapBonusConfigure      Capability = "bonus.configure"
	CapBonusCalculate      Capability = "bonus.calculate"
	CapBonusRead           Capability = "bonus.read"
	CapSalaryRead          Capability = "salary.read"
	CapAuditRead           Capability = "audit.read"
	CapEmployeesWrite      Capability = "employees.write"
)

var DefaultCapabilities = []Capability{
	CapEvaluationEdit,
	CapEvaluationClose,
	CapEvaluationReopen,
	CapEvaluationBulkClose,
	CapEvaluationRead,
	CapScoresRead,
	CapScoresRecompute,
	CapTemplatesWrite,
	CapOverridesWrite,
	CapBonusConfigure,
	CapBonusCalculate,
	CapBonusRead,
	CapSalaryRead,
	CapAuditRead,
	CapEmployeesWrite,
}

var DefaultRoles = []Role{RoleEmployee, RoleManager, RoleHR, RoleAdmin}

func KnownCapability(c Capability) bool {
	for _, known := range DefaultCapabilities {
		if known == c {
			return true
		}
	}
	return false
}
