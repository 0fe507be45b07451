package models

// Participant represents one person on an event. The name is the identity:
// it must be unique within the owning event, and expenses and transactions
// reference participants by it.
type Participant struct {
	// Name identifies the participant within the event.
	Name string `json:"name"`

	// EventCode is the invite code of the owning event.
	EventCode string `json:"event_code,omitempty"`

	// ExpensesPaid holds the IDs of expenses this participant paid for.
	// Derived; rebuilt from the event's expense list.
	ExpensesPaid []string `json:"expenses_paid"`

	// ExpensesInvolved holds the IDs of expenses this participant shares.
	// Derived.
	ExpensesInvolved []string `json:"expenses_involved"`

	// TransactionsFrom holds the IDs of settlement payments this
	// participant made. Derived.
	TransactionsFrom []string `json:"transactions_from"`

	// TransactionsTo holds the IDs of settlement payments this participant
	// received. Derived.
	TransactionsTo []string `json:"transactions_to"`
}
