package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driving"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// Ensure TokenManager implements the interface.
var _ driving.TokenLifecycle = (*TokenManager)(nil)

// TokenManager wraps a TokenStore with expiry-aware access.
// A nil AuthorizationServer means no client id is configured; the stored
// record can still be read and cleared but never refreshed.
type TokenManager struct {
	store  driven.TokenStore
	server driven.AuthorizationServer
	now    func() time.Time
}

// NewTokenManager creates a token manager.
func NewTokenManager(store driven.TokenStore, server driven.AuthorizationServer) *TokenManager {
	return &TokenManager{
		store:  store,
		server: server,
		now:    time.Now,
	}
}

// Current returns the stored record, or false if none is usable.
func (m *TokenManager) Current(ctx context.Context) (domain.TokenRecord, bool) {
	record, ok := m.store.Load(ctx)
	if !ok || !record.Valid() {
		return domain.TokenRecord{}, false
	}
	return record, true
}

// EnsureFresh refreshes the record once the current time reaches its
// stored expiry. Otherwise the record is returned untouched.
func (m *TokenManager) EnsureFresh(ctx context.Context, record domain.TokenRecord) (domain.TokenRecord, error) {
	if !record.NeedsRefresh(m.now()) {
		return record, nil
	}
	logger.Debug("tokens: access token expired at %s, refreshing", record.Expiry().Format(time.RFC3339))
	return m.refresh(ctx, record)
}

// ForceRefresh refreshes the record regardless of its expiry.
func (m *TokenManager) ForceRefresh(ctx context.Context, record domain.TokenRecord) (domain.TokenRecord, error) {
	logger.Debug("tokens: forced refresh")
	return m.refresh(ctx, record)
}

// Clear removes the stored record.
func (m *TokenManager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// refresh performs the refresh grant and persists the result.
// Nothing is written unless the grant succeeds.
func (m *TokenManager) refresh(ctx context.Context, record domain.TokenRecord) (domain.TokenRecord, error) {
	if m.server == nil {
		return domain.TokenRecord{}, domain.ErrNotConfigured
	}
	if record.RefreshToken == "" {
		return domain.TokenRecord{}, domain.ErrNotLoggedIn
	}

	grant, err := m.server.Refresh(ctx, record.RefreshToken)
	if err != nil {
		return domain.TokenRecord{}, err
	}

	updated := domain.NewTokenRecord(grant, m.now())
	// Providers are not required to rotate the refresh token.
	if updated.RefreshToken == "" {
		updated.RefreshToken = record.RefreshToken
	}

	if err := m.store.Save(ctx, updated); err != nil {
		return domain.TokenRecord{}, fmt.Errorf("save refreshed token: %w", err)
	}
	logger.Debug("tokens: refreshed, new expiry %s", updated.Expiry().Format(time.RFC3339))
	return updated, nil
}
