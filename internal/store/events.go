package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// DefaultRecentLimit is used by Recent when the limit is not positive.
const DefaultRecentLimit = 50

// Event is one journaled gesture edge. One-shot gestures are recorded with
// Value true when they fire; the wave toggle is recorded on both edges.
type Event struct {
	ID        string    `json:"id"`
	Gesture   string    `json:"gesture"`
	Value     bool      `json:"value"`
	Frame     int64     `json:"frame"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository provides access to the gesture journal.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e, assigning an ID and CreatedAt when they are unset.
func (r *EventRepository) Record(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, gesture, value, frame, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Gesture, e.Value, e.Frame, e.CreatedAt,
	)
	return err
}

// GetByID retrieves a single event.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}
	err := r.db.QueryRow(
		`SELECT id, gesture, value, frame, created_at
		 FROM gesture_events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Gesture, &e.Value, &e.Frame, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := r.db.Query(
		`SELECT id, gesture, value, frame, created_at
		 FROM gesture_events ORDER BY created_at DESC, frame DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Gesture, &e.Value, &e.Frame, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByGesture returns how many events each gesture has in the journal.
func (r *EventRepository) CountByGesture() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT gesture, COUNT(*) FROM gesture_events GROUP BY gesture`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// DeleteAll clears the journal and returns the number of removed events.
func (r *EventRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM gesture_events`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
