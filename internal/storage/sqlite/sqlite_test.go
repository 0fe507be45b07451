package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ChiriacCasian/eventorganizer/internal/models"
	"github.com/ChiriacCasian/eventorganizer/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testEvent(code string) *models.Event {
	return &models.Event{
		Code:         code,
		Title:        "Ski Trip",
		CreatedAt:    1700000000,
		ExpenseTypes: []string{"food", "transport"},
		Participants: []models.Participant{
			{Name: "Alice"},
			{Name: "Bob"},
		},
		Expenses: []models.Expense{
			{ID: "e1", Payer: "Alice", Involved: []string{"Alice", "Bob"}, Amount: 60, Type: "food"},
		},
		Transactions: []models.Transaction{
			{ID: "t1", Payer: "Bob", Payee: "Alice", Amount: 30},
		},
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateEvent then GetEvent round-trips the aggregate", func(t *testing.T) {
		original := testEvent("ABC234")
		if err := store.CreateEvent(ctx, original); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		retrieved, err := store.GetEvent(ctx, "ABC234")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}

		if retrieved.Title != original.Title {
			t.Errorf("Title = %q, want %q", retrieved.Title, original.Title)
		}
		if retrieved.CreatedAt != original.CreatedAt {
			t.Errorf("CreatedAt = %d, want %d", retrieved.CreatedAt, original.CreatedAt)
		}
		if len(retrieved.Participants) != 2 {
			t.Fatalf("got %d participants, want 2", len(retrieved.Participants))
		}
		// Submission order survives the round trip.
		if retrieved.Participants[0].Name != "Alice" || retrieved.Participants[1].Name != "Bob" {
			t.Errorf("participant order = %v", retrieved.Participants)
		}
		if len(retrieved.Expenses) != 1 || retrieved.Expenses[0].ID != "e1" {
			t.Fatalf("expenses = %+v", retrieved.Expenses)
		}
		if got := retrieved.Expenses[0].Involved; len(got) != 2 {
			t.Errorf("expense involved = %v, want 2 names", got)
		}
		if len(retrieved.Transactions) != 1 || retrieved.Transactions[0].Payee != "Alice" {
			t.Fatalf("transactions = %+v", retrieved.Transactions)
		}
	})

	t.Run("GetEvent rebuilds participant back-links", func(t *testing.T) {
		retrieved, err := store.GetEvent(ctx, "ABC234")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}

		alice := retrieved.Participant("Alice")
		bob := retrieved.Participant("Bob")
		if len(alice.ExpensesPaid) != 1 || alice.ExpensesPaid[0] != "e1" {
			t.Errorf("Alice.ExpensesPaid = %v, want [e1]", alice.ExpensesPaid)
		}
		if len(bob.ExpensesInvolved) != 1 || bob.ExpensesInvolved[0] != "e1" {
			t.Errorf("Bob.ExpensesInvolved = %v, want [e1]", bob.ExpensesInvolved)
		}
		if len(bob.TransactionsFrom) != 1 || bob.TransactionsFrom[0] != "t1" {
			t.Errorf("Bob.TransactionsFrom = %v, want [t1]", bob.TransactionsFrom)
		}
		if len(alice.TransactionsTo) != 1 || alice.TransactionsTo[0] != "t1" {
			t.Errorf("Alice.TransactionsTo = %v, want [t1]", alice.TransactionsTo)
		}
	})

	t.Run("CreateEvent rejects a taken code", func(t *testing.T) {
		dup := testEvent("ABC234")
		err := store.CreateEvent(ctx, dup)
		if !errors.Is(err, storage.ErrCodeTaken) {
			t.Errorf("CreateEvent = %v, want ErrCodeTaken", err)
		}
	})

	t.Run("failed create leaves no partial rows", func(t *testing.T) {
		// Second expense reuses e1's primary key, so the cascade fails
		// after the event row and first expense were written into the tx.
		bad := testEvent("DEF567")
		bad.Expenses = append(bad.Expenses, models.Expense{
			ID: "e1", Payer: "Bob", Involved: []string{"Bob"}, Amount: 10, Type: "food",
		})

		if err := store.CreateEvent(ctx, bad); err == nil {
			t.Fatal("expected CreateEvent to fail")
		}

		exists, err := store.ExistsEvent(ctx, "DEF567")
		if err != nil {
			t.Fatalf("ExistsEvent failed: %v", err)
		}
		if exists {
			t.Error("aggregate partially persisted after failed create")
		}
	})

	t.Run("ReplaceEvent swaps the aggregate wholesale and keeps created_at", func(t *testing.T) {
		updated := testEvent("ABC234")
		updated.Title = "Ski Trip 2.0"
		updated.CreatedAt = 999 // must be ignored
		updated.Participants = []models.Participant{{Name: "Alice"}, {Name: "Carol"}}
		updated.Expenses = []models.Expense{
			{ID: "e2", Payer: "Carol", Involved: []string{"Alice", "Carol"}, Amount: 20, Type: "transport"},
		}
		updated.Transactions = nil

		if err := store.ReplaceEvent(ctx, updated); err != nil {
			t.Fatalf("ReplaceEvent failed: %v", err)
		}

		retrieved, err := store.GetEvent(ctx, "ABC234")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if retrieved.Title != "Ski Trip 2.0" {
			t.Errorf("Title = %q, want updated title", retrieved.Title)
		}
		if retrieved.CreatedAt != 1700000000 {
			t.Errorf("CreatedAt = %d, want original 1700000000", retrieved.CreatedAt)
		}
		if len(retrieved.Expenses) != 1 || retrieved.Expenses[0].ID != "e2" {
			t.Errorf("expenses = %+v, want only e2", retrieved.Expenses)
		}
		if len(retrieved.Transactions) != 0 {
			t.Errorf("transactions = %+v, want none", retrieved.Transactions)
		}
		if p := retrieved.Participant("Bob"); p != nil {
			t.Error("Bob should be gone after replace")
		}
	})

	t.Run("ReplaceEvent on unknown code returns ErrNotFound", func(t *testing.T) {
		err := store.ReplaceEvent(ctx, testEvent("ZZZZZZ"))
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("ReplaceEvent = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListEvents returns all aggregates", func(t *testing.T) {
		second := testEvent("GHJ234")
		second.CreatedAt = 1700000500
		if err := store.CreateEvent(ctx, second); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		events, err := store.ListEvents(ctx)
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("got %d events, want 2", len(events))
		}
		if events[0].Code != "ABC234" || events[1].Code != "GHJ234" {
			t.Errorf("order = [%s %s], want creation order", events[0].Code, events[1].Code)
		}
	})

	t.Run("DeleteEvent removes the aggregate and returns it", func(t *testing.T) {
		removed, err := store.DeleteEvent(ctx, "GHJ234")
		if err != nil {
			t.Fatalf("DeleteEvent failed: %v", err)
		}
		if removed.Code != "GHJ234" {
			t.Errorf("removed.Code = %q, want GHJ234", removed.Code)
		}

		exists, err := store.ExistsEvent(ctx, "GHJ234")
		if err != nil {
			t.Fatalf("ExistsEvent failed: %v", err)
		}
		if exists {
			t.Error("event still exists after delete")
		}
	})

	t.Run("DeleteEvent on unknown code returns ErrNotFound", func(t *testing.T) {
		_, err := store.DeleteEvent(ctx, "ZZZZZZ")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteEvent = %v, want ErrNotFound", err)
		}
	})

	t.Run("GetEvent on unknown code returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetEvent(ctx, "ZZZZZZ")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetEvent = %v, want ErrNotFound", err)
		}
	})
}

// stateEvent builds an aggregate whose title, sole participant and sole
// expense payer all carry the same marker, so a read that mixes two stored
// states is detectable from the result alone.
func stateEvent(code, state string) *models.Event {
	return &models.Event{
		Code:         code,
		Title:        state,
		CreatedAt:    1700000000,
		ExpenseTypes: []string{"food"},
		Participants: []models.Participant{{Name: state}},
		Expenses: []models.Expense{
			{ID: "e-" + state, Payer: state, Involved: []string{state}, Amount: 10, Type: "food"},
		},
	}
}

// coherent reports whether every part of the aggregate comes from the same
// stored state.
func coherent(event *models.Event) bool {
	return len(event.Participants) == 1 &&
		event.Participants[0].Name == event.Title &&
		len(event.Expenses) == 1 &&
		event.Expenses[0].Payer == event.Title
}

func TestGetEventConsistentUnderConcurrentReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateEvent(ctx, stateEvent("ABC234", "StateA")); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 50; i++ {
			state := "StateA"
			if i%2 == 1 {
				state = "StateB"
			}
			if err := store.ReplaceEvent(ctx, stateEvent("ABC234", state)); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := 0; i < 50; i++ {
		event, err := store.GetEvent(ctx, "ABC234")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if !coherent(event) {
			t.Fatalf("GetEvent mixed two stored states: title=%q participants=%+v expenses=%+v",
				event.Title, event.Participants, event.Expenses)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("ReplaceEvent failed: %v", err)
	}
}

func TestDeleteEventReturnsCoherentAggregate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateEvent(ctx, stateEvent("DEF567", "StateA")); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 50; i++ {
			state := "StateA"
			if i%2 == 1 {
				state = "StateB"
			}
			err := store.ReplaceEvent(ctx, stateEvent("DEF567", state))
			if errors.Is(err, storage.ErrNotFound) {
				// The delete below won the race; nothing left to replace.
				done <- nil
				return
			}
			if err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	removed, err := store.DeleteEvent(ctx, "DEF567")
	if err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	if !coherent(removed) {
		t.Fatalf("DeleteEvent returned a mix of two stored states: title=%q participants=%+v expenses=%+v",
			removed.Title, removed.Participants, removed.Expenses)
	}

	if err := <-done; err != nil {
		t.Fatalf("ReplaceEvent failed: %v", err)
	}
}
