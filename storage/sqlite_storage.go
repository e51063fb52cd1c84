package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/calchat/calchat/conversation"
)

// SQLiteStore keeps one row per turn, keyed by session id, so a session
// transcript survives program restarts.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "calchat.db"
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			booking_json TEXT,
			suggested_times_json TEXT,
			requires_confirmation INTEGER NOT NULL DEFAULT 0,
			is_time_selection INTEGER NOT NULL DEFAULT 0,
			is_confirmation INTEGER NOT NULL DEFAULT 0,
			is_startup_notice INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id)`)
	return err
}

// AppendTurn inserts one turn. Structured fields are stored as JSON so
// the schema does not chase the backend's booking record shape.
func (s *SQLiteStore) AppendTurn(sessionID string, turn conversation.Turn) error {
	var bookingJSON sql.NullString
	if turn.Booking != nil {
		buf, err := json.Marshal(turn.Booking)
		if err != nil {
			return fmt.Errorf("encode booking: %w", err)
		}
		bookingJSON = sql.NullString{String: string(buf), Valid: true}
	}
	var suggestedJSON sql.NullString
	if len(turn.SuggestedTimes) > 0 {
		buf, err := json.Marshal(turn.SuggestedTimes)
		if err != nil {
			return fmt.Errorf("encode suggested times: %w", err)
		}
		suggestedJSON = sql.NullString{String: string(buf), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO turns (
			session_id, role, content, timestamp,
			booking_json, suggested_times_json,
			requires_confirmation, is_time_selection, is_confirmation, is_startup_notice
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		turn.Role,
		turn.Content,
		turn.Timestamp.Format(time.RFC3339Nano),
		bookingJSON,
		suggestedJSON,
		boolToInt(turn.RequiresConfirmation),
		boolToInt(turn.IsTimeSelection),
		boolToInt(turn.IsConfirmation),
		boolToInt(turn.IsStartupNotice),
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// LoadSession returns the transcript for sessionID in append order.
func (s *SQLiteStore) LoadSession(sessionID string) ([]conversation.Turn, error) {
	rows, err := s.db.Query(`
		SELECT role, content, timestamp,
			booking_json, suggested_times_json,
			requires_confirmation, is_time_selection, is_confirmation, is_startup_notice
		FROM turns WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []conversation.Turn
	for rows.Next() {
		var (
			turn          conversation.Turn
			rawTimestamp  string
			bookingJSON   sql.NullString
			suggestedJSON sql.NullString
			requiresConf  int
			isTimeSel     int
			isConf        int
			isStartup     int
		)
		if err := rows.Scan(
			&turn.Role, &turn.Content, &rawTimestamp,
			&bookingJSON, &suggestedJSON,
			&requiresConf, &isTimeSel, &isConf, &isStartup,
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, rawTimestamp); err == nil {
			turn.Timestamp = ts
		}
		if bookingJSON.Valid {
			var booking conversation.BookingData
			if err := json.Unmarshal([]byte(bookingJSON.String), &booking); err == nil {
				turn.Booking = &booking
			}
		}
		if suggestedJSON.Valid {
			var suggested []string
			if err := json.Unmarshal([]byte(suggestedJSON.String), &suggested); err == nil {
				turn.SuggestedTimes = suggested
			}
		}
		turn.RequiresConfirmation = requiresConf != 0
		turn.IsTimeSelection = isTimeSel != 0
		turn.IsConfirmation = isConf != 0
		turn.IsStartupNotice = isStartup != 0
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}

// ClearSession deletes every turn belonging to sessionID.
func (s *SQLiteStore) ClearSession(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
