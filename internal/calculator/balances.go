// Package calculator computes who owes whom on an event.
package calculator

import (
	"math"
	"sort"

	"github.com/ChiriacCasian/eventorganizer/internal/models"
)

// epsilon below which a balance is considered settled. Keeps float noise
// from producing one-cent suggested payments.
const epsilon = 0.005

// Balance is one participant's standing on the event.
type Balance struct {
	// Participant is the participant's name.
	Participant string `json:"participant"`

	// TotalPaid is everything this participant put in: expenses paid plus
	// settlement payments made.
	TotalPaid float64 `json:"total_paid"`

	// TotalOwed is everything charged to this participant: equal shares of
	// the expenses they are involved in, plus settlement payments received.
	TotalOwed float64 `json:"total_owed"`

	// Net is TotalPaid - TotalOwed. Positive means the group owes this
	// participant money.
	Net float64 `json:"net"`
}

// Balances computes each participant's standing. An expense is owed equally
// by its involved participants; a settlement transaction moves the payer's
// balance up and the payee's down.
func Balances(event *models.Event) []Balance {
	byName := make(map[string]*Balance, len(event.Participants))
	ordered := make([]*Balance, 0, len(event.Participants))
	for i := range event.Participants {
		b := &Balance{Participant: event.Participants[i].Name}
		byName[b.Participant] = b
		ordered = append(ordered, b)
	}

	for i := range event.Expenses {
		ex := &event.Expenses[i]
		if len(ex.Involved) == 0 {
			continue
		}
		if payer, ok := byName[ex.Payer]; ok {
			payer.TotalPaid += ex.Amount
		}
		share := ex.Amount / float64(len(ex.Involved))
		for _, name := range ex.Involved {
			if b, ok := byName[name]; ok {
				b.TotalOwed += share
			}
		}
	}

	for i := range event.Transactions {
		tx := &event.Transactions[i]
		if payer, ok := byName[tx.Payer]; ok {
			payer.TotalPaid += tx.Amount
		}
		if payee, ok := byName[tx.Payee]; ok {
			payee.TotalOwed += tx.Amount
		}
	}

	balances := make([]Balance, len(ordered))
	for i, b := range ordered {
		b.Net = b.TotalPaid - b.TotalOwed
		balances[i] = *b
	}
	return balances
}

// SettleUp suggests payments that would bring every balance to zero, using
// greedy matching: the largest debtor pays the largest creditor until both
// sides are flat. The suggestions are ordinary transactions with no IDs;
// recording one is the client's decision.
func SettleUp(balances []Balance) []models.Transaction {
	type side struct {
		name   string
		amount float64
	}
	var creditors, debtors []side
	for _, b := range balances {
		switch {
		case b.Net > epsilon:
			creditors = append(creditors, side{b.Participant, b.Net})
		case b.Net < -epsilon:
			debtors = append(debtors, side{b.Participant, -b.Net})
		}
	}

	// Largest first; ties broken by name so the output is deterministic.
	sort.Slice(creditors, func(i, j int) bool {
		if creditors[i].amount != creditors[j].amount {
			return creditors[i].amount > creditors[j].amount
		}
		return creditors[i].name < creditors[j].name
	})
	sort.Slice(debtors, func(i, j int) bool {
		if debtors[i].amount != debtors[j].amount {
			return debtors[i].amount > debtors[j].amount
		}
		return debtors[i].name < debtors[j].name
	})

	var suggestions []models.Transaction
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		amount := math.Min(creditors[ci].amount, debtors[di].amount)
		suggestions = append(suggestions, models.Transaction{
			Payer:  debtors[di].name,
			Payee:  creditors[ci].name,
			Amount: amount,
		})
		creditors[ci].amount -= amount
		debtors[di].amount -= amount
		if creditors[ci].amount <= epsilon {
			ci++
		}
		if debtors[di].amount <= epsilon {
			di++
		}
	}
	return suggestions
}
