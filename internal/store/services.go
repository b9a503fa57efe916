package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const serviceColumns = `id, name, hourly_rate, description, created_at, updated_at`

func validateService(name string, rate decimal.Decimal) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if rate.IsNegative() {
		return "", ErrNegativeRate
	}
	return name, nil
}

// nameTaken reports whether another service (not excludeID) uses name.
func nameTaken(tx *sql.Tx, name string, excludeID int64) (bool, error) {
	var n int
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM services WHERE name = ? AND id != ?`, name, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check service name: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CreateService(name string, rate decimal.Decimal, description string) (*Service, error) {
	name, err := validateService(name, rate)
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.withTx(func(tx *sql.Tx) error {
		taken, err := nameTaken(tx, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("create service %q: %w", name, ErrDuplicateName)
		}
		now := formatTime(time.Now())
		res, err := tx.Exec(
			`INSERT INTO services (name, hourly_rate, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			name, rate.String(), strings.TrimSpace(description), now, now,
		)
		if err != nil {
			return fmt.Errorf("insert service: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("Created service %d %q", id, name)
	return s.GetService(id)
}

func (s *Store) GetService(id int64) (*Service, error) {
	row := s.db.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get service %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get service %d: %w", id, err)
	}
	return svc, nil
}

func (s *Store) ListServices() ([]Service, error) {
	rows, err := s.db.Query(`SELECT ` + serviceColumns + ` FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *svc)
	}
	return services, rows.Err()
}

func (s *Store) CountServices() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM services`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateService(id int64, name string, rate decimal.Decimal, description string) error {
	name, err := validateService(name, rate)
	if err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		taken, err := nameTaken(tx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("update service %d: %w", id, ErrDuplicateName)
		}
		res, err := tx.Exec(
			`UPDATE services SET name = ?, hourly_rate = ?, description = ?, updated_at = ? WHERE id = ?`,
			name, rate.String(), strings.TrimSpace(description), formatTime(time.Now()), id,
		)
		if err != nil {
			return fmt.Errorf("update service %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update service %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// DeleteService removes a service together with all of its time entries and
// returns how many entries were removed.
func (s *Store) DeleteService(id int64) (int64, error) {
	var removed int64
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM time_entries WHERE service_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete entries of service %d: %w", id, err)
		}
		removed, _ = res.RowsAffected()

		res, err = tx.Exec(`DELETE FROM services WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete service %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete service %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Infof("Deleted service %d and %d time entries", id, removed)
	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanService(sc scanner) (*Service, error) {
	svc := &Service{}
	var rate, createdAt, updatedAt string
	if err := sc.Scan(&svc.ID, &svc.Name, &rate, &svc.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	svc.HourlyRate = parseDecimal(rate)
	svc.CreatedAt = parseTime(createdAt)
	svc.UpdatedAt = parseTime(updatedAt)
	return svc, nil
}
