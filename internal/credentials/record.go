package credentials

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LifetimeExpiry marks a record that never expires.
const LifetimeExpiry = "LIFETIME"

// ParseRecords reads comma separated credential lines. Each line is trimmed of
// surrounding whitespace; lines with fewer than four fields are skipped and
// extra fields beyond the fourth are ignored. Fields themselves are kept
// byte-exact.
func ParseRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 4 {
			continue
		}
		records = append(records, Record{
			DeviceID:     parts[0],
			Username:     parts[1],
			PasswordHash: parts[2],
			Expiry:       parts[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan credential records: %w", err)
	}
	return records, nil
}

// FormatRecord renders a record as a credential line.
func FormatRecord(rec Record) string {
	return strings.Join([]string{rec.DeviceID, rec.Username, rec.PasswordHash, rec.Expiry}, ",")
}
