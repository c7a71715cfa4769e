// Package evaluation implements the per-(employee, template, period)
// approval workflow. Every change goes through Transition and appends an
// immutable timeline entry.
package evaluation

import (
	"encoding/json"
	"time"
)

type Acknowledgement struct {
	Decision AckDecision `json:"decision"`
	Comment  string      `json:"comment,omitempty"`
	By       string      `json:"by"`
	At       time.Time   `json:"at"`
}

type TimelineEntry struct {
	ID        string          `json:"id"`
	At        time.Time       `json:"at"`
	ActorID   string          `json:"actorId"`
	Action    Action          `json:"action"`
	FromState State           `json:"fromState,omitempty"`
	ToState   State           `json:"toState"`
	Note      string          `json:"note,omitempty"`
	Snapshot  json.RawMessage `json:"snapshot,omitempty"`
}

type Evaluation struct {
	ID           string             `json:"id"`
	EmployeeID   string             `json:"employeeId"`
	TemplateID   string             `json:"templateId"`
	PeriodCode   string             `json:"periodCode"`
	Year         int                `json:"year"`
	Results      map[string]float64 `json:"results"`
	Rating       *float64           `json:"rating,omitempty"`
	Score        *float64           `json:"score,omitempty"`
	Comment      string             `json:"comment,omitempty"`
	State        State              `json:"state"`
	EvaluatorID  string             `json:"evaluatorId,omitempty"`
	HRReviewerID string             `json:"hrReviewerId,omitempty"`
	HRComment    string             `json:"hrComment,omitempty"`
	Ack          *Acknowledgement   `json:"acknowledgement,omitempty"`
	SubmittedAt  *time.Time         `json:"submittedAt,omitempty"`
	ClosedAt     *time.Time         `json:"closedAt,omitempty"`
	Timeline     []TimelineEntry    `json:"timeline,omitempty"`
	Version      int                `json:"version"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Key is the uniqueness key of an evaluation.
type Key struct {
	EmployeeID string `json:"employeeId"`
	TemplateID string `json:"templateId"`
	PeriodCode string `json:"periodCode"`
}

func (e Evaluation) Key() Key {
	return Key{EmployeeID: e.EmployeeID, TemplateID: e.TemplateID, PeriodCode: e.PeriodCode}
}

// Payload carries the optional inputs of a transition. Results values may
// be numbers, numeric strings or booleans; they are validated against the
// template's goals.
type Payload struct {
	Results   map[string]any `json:"results,omitempty"`
	Rating    *float64       `json:"rating,omitempty"`
	Comment   *string        `json:"comment,omitempty"`
	HRComment string         `json:"hrComment,omitempty"`
	Note      string         `json:"note,omitempty"`
}

type CreateRequest struct {
	EmployeeID  string `json:"employeeId"`
	TemplateID  string `json:"templateId"`
	PeriodCode  string `json:"periodCode"`
	EvaluatorID string `json:"evaluatorId,omitempty"`
}

type Filter struct {
	IDs          []string
	EmployeeIDs  []string
	TemplateID   string
	PeriodCode   string
	Year         int
	States       []State
	WithTimeline bool
}

type BulkCloseRequest struct {
	IDs        []string `json:"ids,omitempty"`
	PeriodCode string   `json:"periodCode,omitempty"`
	TemplateID string   `json:"templateId,omitempty"`
	HRComment  string   `json:"hrComment,omitempty"`
}

type ItemFailure struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type BulkCloseResult struct {
	Matched   int           `json:"matched"`
	Closed    int           `json:"closed"`
	ClosedIDs []string      `json:"closedIds"`
	Failures  []ItemFailure `json:"failures"`
}

// snapshot is the value copy stored on timeline entries.
type snapshot struct {
	Results map[string]float64 `json:"results,omitempty"`
	Rating  *float64           `json:"rating,omitempty"`
	Score   *float64           `json:"score,omitempty"`
	Ack     *Acknowledgement   `json:"acknowledgement,omitempty"`
}
