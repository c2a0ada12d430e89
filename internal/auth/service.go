package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vacationplanner/internal/kv"
	"vacationplanner/internal/logging"
)

const (
	passkeyPrefix     = "passkey:"
	passkeyMarker     = "registered"
	DefaultPasskeyTTL = 365 * 24 * time.Hour
)

// ErrPasskeyRequired is returned when an empty passkey is registered.
var ErrPasskeyRequired = errors.New("passkeyId required")

// Service registers and verifies passkeys. A passkey is a client-chosen
// bearer token: whoever presents it owns the matching history. Passkeys are
// compared byte for byte; surrounding whitespace is part of the token.
type Service struct {
	store      kv.Store
	passkeyTTL time.Duration
	headerName string
	logger     *zap.Logger
}

// NewService constructs a passkey registry with the supplied record lifetime.
func NewService(store kv.Store, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultPasskeyTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		passkeyTTL: ttl,
		headerName: "X-Passkey-ID",
		logger:     logger,
	}
}

// Register writes the registry record, refreshing its expiry when it already exists.
func (s *Service) Register(ctx context.Context, passkeyID string) error {
	if passkeyID == "" {
		return ErrPasskeyRequired
	}
	if err := s.store.Put(ctx, passkeyPrefix+passkeyID, passkeyMarker, s.passkeyTTL); err != nil {
		return fmt.Errorf("register passkey: %w", err)
	}
	return nil
}

// Verify reports whether a live registry record exists. Store failures count as
// "not registered" and are only logged.
func (s *Service) Verify(ctx context.Context, passkeyID string) bool {
	if passkeyID == "" {
		return false
	}
	_, found, err := s.store.Get(ctx, passkeyPrefix+passkeyID)
	if err != nil {
		s.logger.Warn("verify passkey failed", logging.Passkey(passkeyID), zap.Error(err))
		return false
	}
	return found
}

// PasskeyTTL reports the configured registry record lifetime.
func (s *Service) PasskeyTTL() time.Duration {
	return s.passkeyTTL
}

// HeaderName returns the request header carrying the passkey.
func (s *Service) HeaderName() string {
	return s.headerName
}
