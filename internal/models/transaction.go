package models

// Transaction represents a settlement payment between two participants:
// the payer hands the payee money to clear (part of) a debt.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	// Assigned during normalization when the client leaves it empty.
	ID string `json:"id"`

	// EventCode is the invite code of the owning event.
	EventCode string `json:"event_code,omitempty"`

	// Payer is the name of the participant who paid.
	Payer string `json:"payer"`

	// Payee is the name of the participant who received the payment.
	Payee string `json:"payee"`

	// Amount is the payment amount. Must be positive.
	Amount float64 `json:"amount"`
}
