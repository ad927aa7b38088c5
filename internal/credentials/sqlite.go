package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteSource reads the users table of a SQLite database in rowid order.
// The database is opened read-only for each call so edits made by the admin
// are visible on the next login attempt.
type SQLiteSource struct {
	path string
}

// NewSQLiteSource returns a Source backed by the database at path.
func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{path: path}
}

// Records implements Source.
func (s *SQLiteSource) Records(ctx context.Context) ([]Record, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, s.path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, s.path, err)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(s.path))
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %v", ErrUnavailable, err)
	}
	defer db.Close()

	var records []Record
	err = retryOnBusy(ctx, func() error {
		records = records[:0]
		rows, err := db.QueryContext(ctx,
			`SELECT device_id, username, password_hash, expiry FROM users ORDER BY rowid`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var rec Record
			if err := rows.Scan(&rec.DeviceID, &rec.Username, &rec.PasswordHash, &rec.Expiry); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query users: %v", ErrUnavailable, err)
	}
	return records, nil
}

// Describe implements Source.
func (s *SQLiteSource) Describe() string {
	return "sqlite " + s.path
}

func readOnlyDSN(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
