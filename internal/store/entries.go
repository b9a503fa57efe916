package store

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

const entryColumns = `e.id, e.service_id, s.name, s.hourly_rate, e.start_time, e.end_time, e.notes, e.created_at, e.updated_at
	FROM time_entries e JOIN services s ON s.id = e.service_id`

// StartEntry opens a running entry for serviceID at the given time. It fails
// with ErrTimerRunning if any entry is already running.
func (s *Store) StartEntry(serviceID int64, notes string, at time.Time) (*TimeEntry, error) {
	var id int64
	err := s.withTx(func(tx *sql.Tx) error {
		var running int
		err := tx.QueryRow(`SELECT COUNT(*) FROM time_entries WHERE end_time IS NULL`).Scan(&running)
		if err != nil {
			return fmt.Errorf("check running entry: %w", err)
		}
		if running > 0 {
			return ErrTimerRunning
		}
		if err := serviceExists(tx, serviceID); err != nil {
			return err
		}

		now := formatTime(time.Now())
		res, err := tx.Exec(
			`INSERT INTO time_entries (service_id, start_time, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			serviceID, formatTime(at), strings.TrimSpace(notes), now, now,
		)
		if err != nil {
			return fmt.Errorf("start entry: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetEntry(id)
}

// StopEntry closes the running entry id at the given time and replaces its
// notes. The end time is moved forward if needed so it is strictly after the
// start time.
func (s *Store) StopEntry(id int64, notes string, at time.Time) (*TimeEntry, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		var startStr string
		var endStr sql.NullString
		err := tx.QueryRow(`SELECT start_time, end_time FROM time_entries WHERE id = ?`, id).Scan(&startStr, &endStr)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("stop entry %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get entry start: %w", err)
		}
		if endStr.Valid {
			return fmt.Errorf("stop entry %d: %w", id, ErrNotRunning)
		}

		start := parseTime(startStr)
		end := at.Truncate(time.Microsecond)
		if !end.After(start) {
			end = start.Add(time.Microsecond)
		}

		_, err = tx.Exec(
			`UPDATE time_entries SET end_time = ?, notes = ?, updated_at = ? WHERE id = ?`,
			formatTime(end), strings.TrimSpace(notes), formatTime(time.Now()), id,
		)
		if err != nil {
			return fmt.Errorf("stop entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetEntry(id)
}

// CreateManualEntry records a completed entry. end must be after start.
func (s *Store) CreateManualEntry(serviceID int64, start, end time.Time, notes string) (*TimeEntry, error) {
	start = start.Truncate(time.Microsecond)
	end = end.Truncate(time.Microsecond)
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}

	var id int64
	err := s.withTx(func(tx *sql.Tx) error {
		if err := serviceExists(tx, serviceID); err != nil {
			return err
		}
		now := formatTime(time.Now())
		res, err := tx.Exec(
			`INSERT INTO time_entries (service_id, start_time, end_time, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			serviceID, formatTime(start), formatTime(end), strings.TrimSpace(notes), now, now,
		)
		if err != nil {
			return fmt.Errorf("insert manual entry: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetEntry(id)
}

func serviceExists(tx *sql.Tx, serviceID int64) error {
	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM services WHERE id = ?`, serviceID).Scan(&n); err != nil {
		return fmt.Errorf("check service %d: %w", serviceID, err)
	}
	if n == 0 {
		return fmt.Errorf("service %d: %w", serviceID, ErrNotFound)
	}
	return nil
}

func (s *Store) GetEntry(id int64) (*TimeEntry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` WHERE e.id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return e, nil
}

// GetRunningEntry returns the entry without an end time, or nil when no
// timer is running.
func (s *Store) GetRunningEntry() (*TimeEntry, error) {
	row := s.db.QueryRow(`SELECT ` + entryColumns + ` WHERE e.end_time IS NULL ORDER BY e.id DESC LIMIT 1`)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get running entry: %w", err)
	}
	return e, nil
}

func (s *Store) CountRunning() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM time_entries WHERE end_time IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count running entries: %w", err)
	}
	return n, nil
}

// DeleteEntries removes the given entries in one transaction and returns the
// number of rows removed.
func (s *Store) DeleteEntries(ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var removed int64
	err := s.withTx(func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
			if err != nil {
				return fmt.Errorf("delete entry %d: %w", id, err)
			}
			n, _ := res.RowsAffected()
			removed += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Debugf("Deleted %d time entries", removed)
	return removed, nil
}

func (s *Store) ListEntries(f EntryFilter) ([]TimeEntry, error) {
	var entries []TimeEntry
	for e, err := range s.Entries(f) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Entries streams the entries matching f. Each iteration runs the query
// again. The loop body must not call other Store methods: the rows hold the
// only connection until the loop ends.
func (s *Store) Entries(f EntryFilter) iter.Seq2[TimeEntry, error] {
	return func(yield func(TimeEntry, error) bool) {
		query, args := f.query()
		rows, err := s.db.Query(query, args...)
		if err != nil {
			yield(TimeEntry{}, fmt.Errorf("list entries: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				yield(TimeEntry{}, fmt.Errorf("scan entry: %w", err))
				return
			}
			if !yield(*e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(TimeEntry{}, fmt.Errorf("list entries: %w", err))
		}
	}
}

func (f EntryFilter) query() (string, []any) {
	query := `SELECT ` + entryColumns + ` WHERE 1=1`
	var args []any

	if f.ServiceID != nil {
		query += ` AND e.service_id = ?`
		args = append(args, *f.ServiceID)
	}
	if f.From != nil {
		query += ` AND e.start_time >= ?`
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		query += ` AND e.start_time <= ?`
		args = append(args, formatTime(*f.To))
	}
	if f.CompletedOnly {
		query += ` AND e.end_time IS NOT NULL`
	}
	if f.Ascending {
		query += ` ORDER BY e.start_time ASC, e.id ASC`
	} else {
		query += ` ORDER BY e.start_time DESC, e.id DESC`
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	return query, args
}

func scanEntry(sc scanner) (*TimeEntry, error) {
	e := &TimeEntry{}
	var rate, startTime, createdAt, updatedAt string
	var endTime sql.NullString
	err := sc.Scan(&e.ID, &e.ServiceID, &e.ServiceName, &rate, &startTime, &endTime,
		&e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.HourlyRate = parseDecimal(rate)
	e.StartTime = parseTime(startTime)
	if endTime.Valid {
		t := parseTime(endTime.String)
		e.EndTime = &t
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}
