package evaluation

type State string

const (
	StateDraft           State = "DRAFT"
	StatePendingEmployee State = "PENDING_EMPLOYEE"
	StatePendingHR       State = "PENDING_HR"
	StateClosed          State = "CLOSED"
)

type Action string

const (
	ActionCreate         Action = "create"
	ActionEdit           Action = "edit"
	ActionSubmitEmployee Action = "submit_employee"
	ActionAcknowledge    Action = "acknowledge"
	ActionContest        Action = "contest"
	ActionSubmitHR       Action = "submit_hr"
	ActionClose          Action = "close"
	ActionReopen         Action = "reopen"
)

type AckDecision string

const (
	AckAgree   AckDecision = "AGREE"
	AckContest AckDecision = "CONTEST"
)
