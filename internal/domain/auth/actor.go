package auth

// Actor is the resolved caller identity. EmployeeID is empty for service
// accounts that are not employees.
type Actor struct {
	UserID     string `json:"userId"`
	EmployeeID string `json:"employeeId,omitempty"`
	Role       Role   `json:"role"`
}

func (a Actor) IsEmployee(employeeID string) bool {
	return a.EmployeeID != "" && a.EmployeeID == employeeID
}

// System is the actor recorded for batch operations not triggered by a user.
var System = Actor{UserID: "system", Role: RoleAdmin}
