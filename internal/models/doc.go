// Package models defines the core domain models for the event organizer.
//
// # Aggregate shape
//
// Event is the aggregate root: it owns the lifecycle of its Participants,
// Expenses and Transactions. The invite code is both the human-shareable
// identifier of an event and its storage key.
//
// # Reference direction
//
// Cross-entity references never embed copies of other entities. An Expense
// names its payer and involved participants by participant name; a
// Transaction names its payer and payee the same way; a Participant's
// derived collections (ExpensesPaid, ExpensesInvolved, TransactionsFrom,
// TransactionsTo) hold expense/transaction IDs. Resolving a reference is a
// lookup by identifier, so the object graph stays acyclic in memory and on
// the wire even though the domain relationships are mutual.
//
// The derived collections are exactly that: derived. They are recomputed
// from the expense and transaction lists on every mutation and read (see
// the graph package), never patched incrementally.
package models
