package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ChiriacCasian/eventorganizer/internal/graph"
	"github.com/ChiriacCasian/eventorganizer/internal/models"
	"github.com/ChiriacCasian/eventorganizer/internal/storage"
)

// querier is the read surface shared by *sql.DB and *sql.Tx, so the
// aggregate loaders can run inside or outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ExistsEvent reports whether an event with the given code is persisted.
func (s *SQLiteStore) ExistsEvent(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM events WHERE code = ?", code,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return true, nil
}

// CreateEvent inserts the full aggregate in one transaction. The events
// table's primary key enforces invite-code uniqueness atomically with the
// insert; a conflict surfaces as storage.ErrCodeTaken.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO events (code, title, created_at) VALUES (?, ?, ?)",
		event.Code, event.Title, event.CreatedAt,
	)
	if isConstraintConflict(err) {
		return storage.ErrCodeTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := insertChildren(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceEvent replaces an existing aggregate wholesale: the event row keeps
// its code and stored creation timestamp, all owned rows are deleted and
// reinserted from the payload. Everything happens in one transaction.
func (s *SQLiteStore) ReplaceEvent(ctx context.Context, event *models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// created_at is immutable once set; keep the stored value.
	var createdAt int64
	err = tx.QueryRowContext(ctx,
		"SELECT created_at FROM events WHERE code = ?", event.Code,
	).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}
	event.CreatedAt = createdAt

	if _, err := tx.ExecContext(ctx,
		"UPDATE events SET title = ? WHERE code = ?", event.Title, event.Code,
	); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	// The aggregate below the root is rebuilt from the payload, not patched.
	for _, stmt := range []string{
		"DELETE FROM transactions WHERE event_code = ?",
		"DELETE FROM expense_involved WHERE expense_id IN (SELECT id FROM expenses WHERE event_code = ?)",
		"DELETE FROM expenses WHERE event_code = ?",
		"DELETE FROM participants WHERE event_code = ?",
		"DELETE FROM expense_types WHERE event_code = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, event.Code); err != nil {
			return fmt.Errorf("failed to clear owned rows: %w", err)
		}
	}

	if err := insertChildren(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertChildren writes every owned row of the aggregate in dependency
// order: participants and expense types first, then expenses, then expense
// involvements and transactions.
func insertChildren(ctx context.Context, tx *sql.Tx, event *models.Event) error {
	for i, name := range event.ExpenseTypes {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_types (event_code, name, position) VALUES (?, ?, ?)",
			event.Code, name, i,
		); err != nil {
			return fmt.Errorf("failed to insert expense type: %w", err)
		}
	}

	for i := range event.Participants {
		p := &event.Participants[i]
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO participants (event_code, name, position) VALUES (?, ?, ?)",
			event.Code, p.Name, i,
		); err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i := range event.Expenses {
		ex := &event.Expenses[i]
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expenses (id, event_code, payer, amount, type, position) VALUES (?, ?, ?, ?, ?, ?)",
			ex.ID, event.Code, ex.Payer, ex.Amount, ex.Type, i,
		); err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		for j, name := range ex.Involved {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO expense_involved (expense_id, participant, position) VALUES (?, ?, ?)",
				ex.ID, name, j,
			); err != nil {
				return fmt.Errorf("failed to insert expense involvement: %w", err)
			}
		}
	}

	for i := range event.Transactions {
		t := &event.Transactions[i]
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO transactions (id, event_code, payer, payee, amount, position) VALUES (?, ?, ?, ?, ?, ?)",
			t.ID, event.Code, t.Payer, t.Payee, t.Amount, i,
		); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	return nil
}

// GetEvent retrieves the full aggregate, with participant back-links rebuilt.
// The root row and every owned collection are read inside one transaction, so
// a concurrent replace can never leave the result spanning two commits.
func (s *SQLiteStore) GetEvent(ctx context.Context, code string) (*models.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	event, err := getEvent(ctx, tx, code)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return event, nil
}

// getEvent loads one aggregate through q, which must span the whole read.
func getEvent(ctx context.Context, q querier, code string) (*models.Event, error) {
	event := &models.Event{}
	err := q.QueryRowContext(ctx,
		"SELECT code, title, created_at FROM events WHERE code = ?", code,
	).Scan(&event.Code, &event.Title, &event.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := loadChildren(ctx, q, event); err != nil {
		return nil, err
	}
	graph.RebuildLinks(event)
	return event, nil
}

// ListEvents retrieves all persisted aggregates, ordered by creation time.
// The whole listing runs in one transaction for the same consistency
// guarantee GetEvent gives a single aggregate.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]*models.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT code, title, created_at FROM events ORDER BY created_at, code",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(&event.Code, &event.Title, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	for _, event := range events {
		if err := loadChildren(ctx, tx, event); err != nil {
			return nil, err
		}
		graph.RebuildLinks(event)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return events, nil
}

// DeleteEvent removes the aggregate and everything it owns, returning the
// removed aggregate. The read and the delete share one transaction, so the
// returned aggregate is exactly the state the delete took out. The foreign
// keys cascade the owned rows.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, code string) (*models.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	event, err := getEvent(ctx, tx, code)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE code = ?", code); err != nil {
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return event, nil
}

// loadChildren populates the aggregate's owned collections from their rows,
// preserving submission order via the position columns.
func loadChildren(ctx context.Context, q querier, event *models.Event) error {
	typeRows, err := q.QueryContext(ctx,
		"SELECT name FROM expense_types WHERE event_code = ? ORDER BY position", event.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense types: %w", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var name string
		if err := typeRows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan expense type: %w", err)
		}
		event.ExpenseTypes = append(event.ExpenseTypes, name)
	}
	if err := typeRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense types: %w", err)
	}

	partRows, err := q.QueryContext(ctx,
		"SELECT name FROM participants WHERE event_code = ? ORDER BY position", event.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer partRows.Close()
	for partRows.Next() {
		p := models.Participant{EventCode: event.Code}
		if err := partRows.Scan(&p.Name); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		event.Participants = append(event.Participants, p)
	}
	if err := partRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	expRows, err := q.QueryContext(ctx,
		"SELECT id, payer, amount, type FROM expenses WHERE event_code = ? ORDER BY position", event.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to get expenses: %w", err)
	}
	defer expRows.Close()
	for expRows.Next() {
		ex := models.Expense{EventCode: event.Code}
		if err := expRows.Scan(&ex.ID, &ex.Payer, &ex.Amount, &ex.Type); err != nil {
			return fmt.Errorf("failed to scan expense: %w", err)
		}
		event.Expenses = append(event.Expenses, ex)
	}
	if err := expRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range event.Expenses {
		ex := &event.Expenses[i]
		invRows, err := q.QueryContext(ctx,
			"SELECT participant FROM expense_involved WHERE expense_id = ? ORDER BY position", ex.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get expense involvements: %w", err)
		}
		for invRows.Next() {
			var name string
			if err := invRows.Scan(&name); err != nil {
				invRows.Close()
				return fmt.Errorf("failed to scan involvement: %w", err)
			}
			ex.Involved = append(ex.Involved, name)
		}
		invRows.Close()
		if err := invRows.Err(); err != nil {
			return fmt.Errorf("failed to iterate involvements: %w", err)
		}
	}

	txRows, err := q.QueryContext(ctx,
		"SELECT id, payer, payee, amount FROM transactions WHERE event_code = ? ORDER BY position", event.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to get transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		t := models.Transaction{EventCode: event.Code}
		if err := txRows.Scan(&t.ID, &t.Payer, &t.Payee, &t.Amount); err != nil {
			return fmt.Errorf("failed to scan transaction: %w", err)
		}
		event.Transactions = append(event.Transactions, t)
	}
	if err := txRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return nil
}
