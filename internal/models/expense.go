package models

// Expense represents a single expense on an event: one participant paid,
// a set of participants share the cost.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	// Assigned during normalization when the client leaves it empty.
	ID string `json:"id"`

	// EventCode is the invite code of the owning event.
	EventCode string `json:"event_code,omitempty"`

	// Payer is the name of the participant who paid.
	Payer string `json:"payer"`

	// Involved are the names of the participants sharing this expense.
	// The cost is split equally among them.
	Involved []string `json:"involved"`

	// Amount is the expense amount. Must be positive.
	Amount float64 `json:"amount"`

	// Type is the expense category, one of the event's expense types.
	Type string `json:"type"`
}
