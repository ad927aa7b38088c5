// Package auth implements the login gate: a credential, device and expiry
// check against the configured credential store.
//
// The gate issues no token or session. A successful Authenticate only tells
// the caller that the user may proceed and until when.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vidqueue/internal/credentials"
	"vidqueue/internal/logging"
)

var (
	ErrStoreUnavailable    = errors.New("credential store unavailable")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrAccessDenied        = errors.New("access denied: wrong device")
	ErrSubscriptionExpired = errors.New("subscription expired")
	ErrDateFormat          = errors.New("unparseable expiry date")
)

// ExpiryLayouts are tried in order when parsing a record's expiry.
var ExpiryLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// Outcome describes a successful login.
type Outcome struct {
	Username string
	// Expiry is the raw value from the store: LIFETIME or a timestamp.
	Expiry string
	// ExpiresAt is zero for lifetime records.
	ExpiresAt time.Time
}

// Lifetime reports whether the login never expires.
func (o Outcome) Lifetime() bool {
	return o.Expiry == credentials.LifetimeExpiry
}

// Gate authenticates users against a credentials.Source.
type Gate struct {
	source credentials.Source
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a Gate.
type Option func(*Gate)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger attaches a logger for outcome records.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate constructs a Gate reading from source.
func NewGate(source credentials.Source, opts ...Option) *Gate {
	g := &Gate{
		source: source,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.NewComponentLogger(g.logger, "auth")
	return g
}

// Authenticate checks username and password against the store and binds the
// selected record to deviceID. The first record whose username and password
// hash both match is selected; a device mismatch is reported before expiry.
func (g *Gate) Authenticate(ctx context.Context, username, password, deviceID string) (Outcome, error) {
	records, err := g.source.Records(ctx)
	if err != nil {
		g.logger.Warn("credential store unavailable",
			logging.String(logging.FieldEventType, "login_store_unavailable"),
			logging.String("store", g.source.Describe()),
			logging.String(logging.FieldErrorHint, "check the credentials section of the config"),
			logging.Error(err),
		)
		return Outcome{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	hash := HashPassword(password)
	for _, rec := range records {
		if rec.Username != username || rec.PasswordHash != hash {
			continue
		}
		outcome, err := g.check(rec, deviceID)
		if err != nil {
			g.logger.Info("login rejected",
				logging.String(logging.FieldEventType, eventFor(err)),
				logging.String("username", username),
				logging.Error(err),
			)
			return Outcome{}, err
		}
		g.logger.Info("login accepted",
			logging.String(logging.FieldEventType, "login_success"),
			logging.String("username", username),
			logging.String("expiry", outcome.Expiry),
		)
		return outcome, nil
	}

	g.logger.Info("login rejected",
		logging.String(logging.FieldEventType, eventFor(ErrInvalidCredentials)),
		logging.String("username", username),
		logging.Int("records", len(records)),
	)
	return Outcome{}, ErrInvalidCredentials
}

func (g *Gate) check(rec credentials.Record, deviceID string) (Outcome, error) {
	if rec.DeviceID != deviceID {
		return Outcome{}, ErrAccessDenied
	}
	outcome := Outcome{Username: rec.Username, Expiry: rec.Expiry}
	if rec.Expiry == credentials.LifetimeExpiry {
		return outcome, nil
	}
	expiresAt, err := ParseExpiry(rec.Expiry)
	if err != nil {
		return Outcome{}, err
	}
	if expiresAt.Before(g.now()) {
		return Outcome{}, ErrSubscriptionExpired
	}
	outcome.ExpiresAt = expiresAt
	return outcome, nil
}

// ParseExpiry parses value with each of ExpiryLayouts in local time.
func ParseExpiry(value string) (time.Time, error) {
	for _, layout := range ExpiryLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, value)
}

// HashPassword returns the lowercase hex SHA-256 digest stored in credential records.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func eventFor(err error) string {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return "login_wrong_device"
	case errors.Is(err, ErrSubscriptionExpired):
		return "login_expired"
	case errors.Is(err, ErrDateFormat):
		return "login_bad_expiry"
	case errors.Is(err, ErrStoreUnavailable):
		return "login_store_unavailable"
	default:
		return "login_invalid_credentials"
	}
}
