// Package graph normalizes an event aggregate before it is written and
// rebuilds derived links after it is read.
//
// Participants, expenses and transactions reference each other mutually, but
// all references are by identifier (participant name, expense/transaction
// ID), never embedded. That keeps the aggregate writable in one pass, in
// dependency order, inside a single transaction: there is no cycle to break.
// The bidirectional back-links the domain wants (a participant's paid and
// involved expenses, its outgoing and incoming transactions) are computed
// here by walking the expense and transaction lists, rather than stored.
package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ChiriacCasian/eventorganizer/internal/models"
)

// invalid reports a rejected aggregate. The service layer wraps these into
// its validation error kind; the request never reaches the store.
func invalid(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Normalize validates the aggregate's internal references and puts it into
// canonical form: trimmed title, IDs assigned to expenses and transactions
// that lack one, expense types unioned with the types actually used, owning
// event code stamped on every child, and derived participant links rebuilt.
//
// The event's own code and creation timestamp are the caller's concern; only
// the graph below the root is checked here.
func Normalize(event *models.Event) error {
	event.Title = strings.TrimSpace(event.Title)

	names := make(map[string]bool, len(event.Participants))
	for i := range event.Participants {
		p := &event.Participants[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return invalid("participant %d has an empty name", i)
		}
		if names[p.Name] {
			return invalid("duplicate participant %q", p.Name)
		}
		names[p.Name] = true
		p.EventCode = event.Code
	}

	expenseIDs := make(map[string]bool, len(event.Expenses))
	for i := range event.Expenses {
		ex := &event.Expenses[i]
		if ex.ID == "" {
			ex.ID = uuid.New().String()
		}
		if expenseIDs[ex.ID] {
			return invalid("duplicate expense id %q", ex.ID)
		}
		expenseIDs[ex.ID] = true
		ex.EventCode = event.Code
		if !names[ex.Payer] {
			return invalid("expense %q paid by unknown participant %q", ex.ID, ex.Payer)
		}
		if len(ex.Involved) == 0 {
			return invalid("expense %q involves no participants", ex.ID)
		}
		seen := make(map[string]bool, len(ex.Involved))
		for _, name := range ex.Involved {
			if !names[name] {
				return invalid("expense %q involves unknown participant %q", ex.ID, name)
			}
			if seen[name] {
				return invalid("expense %q lists participant %q twice", ex.ID, name)
			}
			seen[name] = true
		}
		if ex.Amount <= 0 {
			return invalid("expense %q has non-positive amount %v", ex.ID, ex.Amount)
		}
	}

	txIDs := make(map[string]bool, len(event.Transactions))
	for i := range event.Transactions {
		tx := &event.Transactions[i]
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		if txIDs[tx.ID] {
			return invalid("duplicate transaction id %q", tx.ID)
		}
		txIDs[tx.ID] = true
		tx.EventCode = event.Code
		if !names[tx.Payer] {
			return invalid("transaction %q from unknown participant %q", tx.ID, tx.Payer)
		}
		if !names[tx.Payee] {
			return invalid("transaction %q to unknown participant %q", tx.ID, tx.Payee)
		}
		if tx.Payer == tx.Payee {
			return invalid("transaction %q pays %q back to themselves", tx.ID, tx.Payer)
		}
		if tx.Amount <= 0 {
			return invalid("transaction %q has non-positive amount %v", tx.ID, tx.Amount)
		}
	}

	event.ExpenseTypes = unionTypes(event)
	RebuildLinks(event)
	return nil
}

// RebuildLinks recomputes every participant's derived collections from the
// event's expense and transaction lists. After it returns, an expense e
// appears in its payer's ExpensesPaid and in every involved participant's
// ExpensesInvolved, and a transaction t appears in its payer's
// TransactionsFrom and its payee's TransactionsTo — both directions, always.
func RebuildLinks(event *models.Event) {
	for i := range event.Participants {
		p := &event.Participants[i]
		p.ExpensesPaid = []string{}
		p.ExpensesInvolved = []string{}
		p.TransactionsFrom = []string{}
		p.TransactionsTo = []string{}
	}
	for i := range event.Expenses {
		ex := &event.Expenses[i]
		if p := event.Participant(ex.Payer); p != nil {
			p.ExpensesPaid = append(p.ExpensesPaid, ex.ID)
		}
		for _, name := range ex.Involved {
			if p := event.Participant(name); p != nil {
				p.ExpensesInvolved = append(p.ExpensesInvolved, ex.ID)
			}
		}
	}
	for i := range event.Transactions {
		tx := &event.Transactions[i]
		if p := event.Participant(tx.Payer); p != nil {
			p.TransactionsFrom = append(p.TransactionsFrom, tx.ID)
		}
		if p := event.Participant(tx.Payee); p != nil {
			p.TransactionsTo = append(p.TransactionsTo, tx.ID)
		}
	}
}

// unionTypes returns the declared expense types plus any type referenced by
// an expense but not declared, preserving declaration order.
func unionTypes(event *models.Event) []string {
	seen := make(map[string]bool, len(event.ExpenseTypes))
	types := make([]string, 0, len(event.ExpenseTypes))
	for _, t := range event.ExpenseTypes {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	for i := range event.Expenses {
		t := event.Expenses[i].Type
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	return types
}
