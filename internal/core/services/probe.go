package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driving"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// Ensure ProbeService implements the interface.
var _ driving.PlaybackProbe = (*ProbeService)(nil)

// ProbeService runs the one-shot connection test.
type ProbeService struct {
	tokens   driving.TokenLifecycle
	player   driven.PlayerProbe
	settings domain.Settings
}

// NewProbeService creates a probe service.
func NewProbeService(tokens driving.TokenLifecycle, player driven.PlayerProbe, settings domain.Settings) *ProbeService {
	return &ProbeService{tokens: tokens, player: player, settings: settings}
}

// Probe fetches the current track once. Unlike the poller it does not
// retry a 401; the status is reported as-is.
func (s *ProbeService) Probe(ctx context.Context) (domain.ProbeResult, error) {
	if !s.settings.IsConfigured() {
		return domain.ProbeResult{}, domain.ErrNotConfigured
	}
	record, ok := s.tokens.Current(ctx)
	if !ok {
		return domain.ProbeResult{}, domain.ErrNotLoggedIn
	}

	record, err := s.tokens.EnsureFresh(ctx, record)
	if err != nil {
		return domain.ProbeResult{}, fmt.Errorf("refresh token: %w", err)
	}

	status, track, err := s.player.ProbeCurrentlyPlaying(ctx, record.AccessToken)
	logger.Debug("probe: HTTP %d", status)
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			return domain.ProbeResult{Status: apiErr.Status}, err
		}
		return domain.ProbeResult{Status: status}, err
	}
	return domain.ProbeResult{Status: status, Track: track}, nil
}
