package profile

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/profile"
)

// Source is the ledger side of the dashboard.
type Source interface {
	Profile(ctx context.Context, address string) (profile.Profile, error)
	Leaderboard(ctx context.Context) ([]profile.Entry, error)
}

// Cache is optional; a nil Cache means every read goes to the ledger.
type Cache interface {
	GetProfile(ctx context.Context, address string) (*profile.Profile, error)
	SetProfile(ctx context.Context, p profile.Profile) error
	GetLeaderboard(ctx context.Context) ([]profile.Entry, bool, error)
	SetLeaderboard(ctx context.Context, entries []profile.Entry) error
	Invalidate(ctx context.Context, address string) error
}

// Service serves read-only profile and leaderboard data.
type Service struct {
	source Source
	cache  Cache
	log    zerolog.Logger
}

func NewService(source Source, cache Cache, log zerolog.Logger) *Service {
	return &Service{source: source, cache: cache, log: log.With().Str("component", "profile").Logger()}
}

func (s *Service) Profile(ctx context.Context, address string) (profile.Profile, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return profile.Profile{}, apperrors.NewValidationError("address", "must not be empty")
	}

	if s.cache != nil {
		cached, err := s.cache.GetProfile(ctx, address)
		if err != nil {
			s.log.Warn().Err(err).Msg("Profile cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	p, err := s.source.Profile(ctx, address)
	if err != nil {
		return profile.Profile{}, s.wrap("profile", err)
	}
	if p.ActiveTokens == nil {
		p.ActiveTokens = []string{}
	}
	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, p); err != nil {
			s.log.Warn().Err(err).Msg("Profile cache write failed")
		}
	}
	return p, nil
}

func (s *Service) Leaderboard(ctx context.Context) ([]profile.Entry, error) {
	if s.cache != nil {
		entries, ok, err := s.cache.GetLeaderboard(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("Leaderboard cache read failed")
		} else if ok {
			return entries, nil
		}
	}

	entries, err := s.source.Leaderboard(ctx)
	if err != nil {
		return nil, s.wrap("leaderboard", err)
	}
	if entries == nil {
		entries = []profile.Entry{}
	}
	if s.cache != nil {
		if err := s.cache.SetLeaderboard(ctx, entries); err != nil {
			s.log.Warn().Err(err).Msg("Leaderboard cache write failed")
		}
	}
	return entries, nil
}

// Forget drops a cached profile so the next read sees fresh points.
func (s *Service) Forget(ctx context.Context, address string) {
	if s.cache == nil || address == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, address); err != nil {
		s.log.Warn().Err(err).Msg("Profile cache invalidate failed")
	}
}

func (s *Service) wrap(op string, err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	return apperrors.NewTransportError(op, err)
}
