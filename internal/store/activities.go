package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"trena/internal/activity"
)

// ErrNotFound is returned for lookups of unknown activity ids.
var ErrNotFound = errors.New("activity not found")

// Insert upserts a synced activity keyed by its time-derived id. The full
// model is stored as a JSON payload; start/end are mirrored into indexed
// columns so overlap queries stay in SQL.
func (db *DB) Insert(a *activity.Synced) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO activities(id,name,type,start_ts,end_ts,hash,payload,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?,datetime('now'),datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			start_ts = excluded.start_ts,
			end_ts = excluded.end_ts,
			hash = excluded.hash,
			payload = excluded.payload,
			updated_at = datetime('now')`,
			a.ID, a.Name, string(a.Type), a.StartTime.Unix(), a.EndTime.Unix(), a.Hash, string(payload))
		return err
	})
}

// FindOverlapping returns stored activities whose recording window
// overlaps [start,end], ordered by start time.
func (db *DB) FindOverlapping(start, end time.Time) ([]*activity.Synced, error) {
	rows, err := db.Query(`SELECT payload FROM activities WHERE start_ts <= ? AND end_ts >= ? ORDER BY start_ts`,
		end.Unix(), start.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// All returns every stored activity ordered by start time.
func (db *DB) All() ([]*activity.Synced, error) {
	rows, err := db.Query(`SELECT payload FROM activities ORDER BY start_ts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (db *DB) ByID(id string) (*activity.Synced, error) {
	var payload string
	err := db.QueryRow(`SELECT payload FROM activities WHERE id=?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var a activity.Synced
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) Count() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}

func (db *DB) Delete(id string) error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM activity_streams WHERE activity_id=?`, id); err != nil {
			return err
		}
		res, err := tx.Exec(`DELETE FROM activities WHERE id=?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return err
	})
}

// SaveStreams stores the gzip-deflated stream payload for an activity.
func (db *DB) SaveStreams(activityID string, deflated []byte) error {
	_, err := db.Exec(`INSERT INTO activity_streams(activity_id,data,created_at) VALUES(?,?,datetime('now'))
		ON CONFLICT(activity_id) DO UPDATE SET data = excluded.data`,
		activityID, deflated)
	return err
}

// Streams loads the deflated stream payload; inflate with
// activity.Inflate.
func (db *DB) Streams(activityID string) ([]byte, error) {
	var data []byte
	err := db.QueryRow(`SELECT data FROM activity_streams WHERE activity_id=?`, activityID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}

func scanActivities(rows *sql.Rows) ([]*activity.Synced, error) {
	var out []*activity.Synced
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a activity.Synced
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
