package models

// Event represents a shared trip: the people on it, what they spent, and how
// they settled up. It is the aggregate root; everything hanging off it lives
// and dies with it.
type Event struct {
	// Code is the unique invite code identifying this event. It doubles as
	// the storage key. Generated on add when the client leaves it empty.
	Code string `json:"code"`

	// Title is the human-readable name of the event. Must be non-empty.
	Title string `json:"title"`

	// CreatedAt is the Unix timestamp when the event was created.
	// Required, and immutable once set: updates keep the stored value.
	CreatedAt int64 `json:"created_at"`

	// ExpenseTypes lists the expense categories declared for this event
	// (e.g. "food", "transport"). Types referenced by expenses but not
	// declared here are added during normalization.
	ExpenseTypes []string `json:"expense_types,omitempty"`

	// Participants is the ordered list of people on the event.
	Participants []Participant `json:"participants"`

	// Expenses are the recorded expenses.
	Expenses []Expense `json:"expenses"`

	// Transactions are the recorded settlement payments between participants.
	Transactions []Transaction `json:"transactions"`
}

// Participant returns the participant with the given name, or nil.
func (e *Event) Participant(name string) *Participant {
	for i := range e.Participants {
		if e.Participants[i].Name == name {
			return &e.Participants[i]
		}
	}
	return nil
}
