package preflight

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/claim"
)

// Service gates entry to the claim flow: a token must be confirmed valid by the ledger
// before any claim UI is shown.
type Service struct {
	ledger claim.Validator
	log    zerolog.Logger
}

func NewService(ledger claim.Validator, log zerolog.Logger) *Service {
	return &Service{ledger: ledger, log: log.With().Str("component", "preflight").Logger()}
}

// Validate returns nil for a usable token, INVALID_TOKEN with the ledger's reason otherwise,
// or TRANSPORT_ERROR when the ledger could not be asked. Blank tokens never reach the network.
func (s *Service) Validate(ctx context.Context, token claim.Token) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.NewInvalidTokenError("")
	}
	err := s.ledger.ValidateToken(ctx, token)
	if err == nil {
		s.log.Debug().Msg("Token accepted")
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		s.log.Info().Str("code", string(appErr.Code)).Msg("Token preflight failed")
		return appErr
	}
	// Foreign errors come from alternative ledger implementations; treat them as transport.
	s.log.Warn().Err(err).Msg("Token preflight failed")
	return apperrors.NewTransportError("validate", err)
}
