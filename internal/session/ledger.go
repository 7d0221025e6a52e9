package session

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garantiplus/brain-controller/internal/canonical"
	_ "modernc.org/sqlite"
)

// #endregion

// #region schema

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id       TEXT PRIMARY KEY,
	customer_name TEXT,
	email         TEXT,
	phone_number  TEXT,
	vin           TEXT,
	last_updated  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_log (
	log_id      INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	role        TEXT NOT NULL,
	message     TEXT NOT NULL,
	intent      TEXT,
	entities    TEXT,
	action_type TEXT,
	FOREIGN KEY (user_id) REFERENCES user_profiles(user_id)
);

CREATE INDEX IF NOT EXISTS idx_conversation_log_user
ON conversation_log(user_id, timestamp);
`

// #endregion

// #region ledger-struct

// Ledger is the durable append-only memory in SQLite: one mutable profile
// row per user plus an immutable conversation transcript. Rows are never
// updated except the profile upsert; cache expiry never touches them.
type Ledger struct {
	db *sql.DB
}

// #endregion

// #region constructor

// OpenLedger opens the SQLite database and runs migrations.
func OpenLedger(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

// #endregion

// #region close

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// #endregion

// #region db-accessor

// DB returns the underlying *sql.DB for use by other tooling.
func (l *Ledger) DB() *sql.DB {
	return l.db
}

// #endregion

// #region record-turn

// RecordTurn persists one conversation turn: the profile upsert, the user's
// message row and, when an action was chosen, the agent's row. The profile
// upsert only overwrites a field when the new value is non-empty.
func (l *Ledger) RecordTurn(userID string, st State, userMessage string, act *TurnAction) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	entitiesJSON, err := json.Marshal(st.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO user_profiles (user_id, customer_name, email, phone_number, vin, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			customer_name = COALESCE(excluded.customer_name, user_profiles.customer_name),
			email         = COALESCE(excluded.email, user_profiles.email),
			phone_number  = COALESCE(excluded.phone_number, user_profiles.phone_number),
			vin           = COALESCE(excluded.vin, user_profiles.vin),
			last_updated  = excluded.last_updated`,
		userID,
		nullable(st.Entity(canonical.KeyCustomerName)),
		nullable(st.Entity(canonical.KeyEmail)),
		nullable(st.Entity(canonical.KeyPhoneNumber)),
		nullable(st.Entity(canonical.KeyVIN)),
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO conversation_log (user_id, timestamp, role, message, intent, entities, action_type)
		 VALUES (?, ?, 'user', ?, ?, ?, NULL)`,
		userID, now, userMessage, nullable(st.CurrentIntent), string(entitiesJSON),
	)
	if err != nil {
		return fmt.Errorf("log user turn: %w", err)
	}

	if act != nil && act.Message != "" {
		_, err = tx.Exec(
			`INSERT INTO conversation_log (user_id, timestamp, role, message, intent, entities, action_type)
			 VALUES (?, ?, 'agent', ?, ?, ?, ?)`,
			userID, now, act.Message, nullable(st.CurrentIntent), string(entitiesJSON), act.ActionType,
		)
		if err != nil {
			return fmt.Errorf("log agent turn: %w", err)
		}
	}

	return tx.Commit()
}

// #endregion

// #region profile

// Profile is one user_profiles row.
type Profile struct {
	UserID       string
	CustomerName string
	Email        string
	PhoneNumber  string
	VIN          string
	LastUpdated  time.Time
}

// Profile reads the durable profile for a user. Returns sql.ErrNoRows when
// the user has never been persisted.
func (l *Ledger) Profile(userID string) (Profile, error) {
	var p Profile
	var name, email, phone, vin sql.NullString
	var updated string

	err := l.db.QueryRow(
		`SELECT user_id, customer_name, email, phone_number, vin, last_updated
		 FROM user_profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &name, &email, &phone, &vin, &updated)
	if err != nil {
		return Profile{}, err
	}

	p.CustomerName = name.String
	p.Email = email.String
	p.PhoneNumber = phone.String
	p.VIN = vin.String
	p.LastUpdated, _ = time.Parse(time.RFC3339Nano, updated)
	return p, nil
}

// #endregion

// #region transcript

// LogRow is one conversation_log row.
type LogRow struct {
	LogID      int64
	Timestamp  time.Time
	Role       string
	Message    string
	Intent     string
	Entities   map[string]string
	ActionType string
}

// Transcript returns the oldest-first conversation rows for a user,
// capped at limit (0 = no cap).
func (l *Ledger) Transcript(userID string, limit int) ([]LogRow, error) {
	q := `SELECT log_id, timestamp, role, message, intent, entities, action_type
	      FROM conversation_log WHERE user_id = ? ORDER BY log_id ASC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var out []LogRow
	for rows.Next() {
		var r LogRow
		var ts string
		var intent, entities, actionType sql.NullString
		if err := rows.Scan(&r.LogID, &ts, &r.Role, &r.Message, &intent, &entities, &actionType); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		r.Intent = intent.String
		r.ActionType = actionType.String
		if entities.Valid && entities.String != "" {
			if err := json.Unmarshal([]byte(entities.String), &r.Entities); err != nil {
				r.Entities = nil
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion

// #region helpers

// nullable maps "" to SQL NULL so COALESCE upserts skip empty values.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion
