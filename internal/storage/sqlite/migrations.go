package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema. These
// run on startup to ensure tables exist.
//
// The tables are ordered so that every foreign key points at a table created
// earlier: events, then participants and expense types, then expenses, then
// the expense involvement rows and transactions. Participant back-links
// (expenses paid/involved, transactions from/to) are not stored at all; they
// are derived from the expense and transaction rows on read.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    code TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS expense_types (
    event_code TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (event_code, name),
    FOREIGN KEY (event_code) REFERENCES events(code) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS participants (
    event_code TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (event_code, name),
    FOREIGN KEY (event_code) REFERENCES events(code) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    event_code TEXT NOT NULL,
    payer TEXT NOT NULL,
    amount REAL NOT NULL,
    type TEXT NOT NULL,
    position INTEGER NOT NULL,
    FOREIGN KEY (event_code) REFERENCES events(code) ON DELETE CASCADE,
    FOREIGN KEY (event_code, payer) REFERENCES participants(event_code, name)
);

CREATE TABLE IF NOT EXISTS expense_involved (
    expense_id TEXT NOT NULL,
    participant TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (expense_id, participant),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    event_code TEXT NOT NULL,
    payer TEXT NOT NULL,
    payee TEXT NOT NULL,
    amount REAL NOT NULL,
    position INTEGER NOT NULL,
    FOREIGN KEY (event_code) REFERENCES events(code) ON DELETE CASCADE,
    FOREIGN KEY (event_code, payer) REFERENCES participants(event_code, name),
    FOREIGN KEY (event_code, payee) REFERENCES participants(event_code, name)
);

CREATE INDEX IF NOT EXISTS idx_participants_event_code ON participants(event_code);
CREATE INDEX IF NOT EXISTS idx_expense_types_event_code ON expense_types(event_code);
CREATE INDEX IF NOT EXISTS idx_expenses_event_code ON expenses(event_code);
CREATE INDEX IF NOT EXISTS idx_expense_involved_expense_id ON expense_involved(expense_id);
CREATE INDEX IF NOT EXISTS idx_transactions_event_code ON transactions(event_code);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
