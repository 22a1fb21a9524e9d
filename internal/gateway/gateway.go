package gateway

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/apperrors"
	"listinglens-backend/internal/models"
	"listinglens-backend/internal/provider"
)

// UsageRecorder persists provider attribution rows. Billing and analytics
// read them, so a successful enhancement whose usage row cannot be written
// is reported as a persistence failure.
type UsageRecorder interface {
	RecordEnhancementUsage(u *models.EnhancementUsage) error
}

// Gateway unifies the configured providers behind one Enhance call. Providers
// are tried in order, exactly once each; the first success wins.
type Gateway struct {
	providers []provider.Provider
	usage     UsageRecorder
	log       zerolog.Logger
}

func New(log zerolog.Logger, usage UsageRecorder, providers ...provider.Provider) *Gateway {
	return &Gateway{
		providers: providers,
		usage:     usage,
		log:       log,
	}
}

func (g *Gateway) Enhance(workspaceID uuid.UUID, req provider.Request) (*provider.Result, error) {
	if len(g.providers) == 0 {
		return nil, apperrors.Validation("no enhancement providers configured")
	}

	var failures []error
	for _, p := range g.providers {
		start := time.Now()
		result, err := p.Enhance(req)
		elapsed := time.Since(start)

		if err != nil {
			g.log.Warn().
				Str("provider", p.Name()).
				Int64("duration_ms", elapsed.Milliseconds()).
				Str("outcome", "failed").
				Err(err).
				Msg("enhancement attempt failed")

			if recErr := g.recordUsage(workspaceID, p.Name(), elapsed, "failed", err.Error()); recErr != nil {
				g.log.Error().Err(recErr).Str("provider", p.Name()).Msg("failed to record usage for failed attempt")
			}

			failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		g.log.Info().
			Str("provider", p.Name()).
			Int64("duration_ms", elapsed.Milliseconds()).
			Str("outcome", "succeeded").
			Msg("enhancement served")

		if recErr := g.recordUsage(workspaceID, p.Name(), elapsed, "succeeded", ""); recErr != nil {
			return nil, apperrors.Persistence("failed to record provider usage", recErr)
		}

		result.Provider = p.Name()
		return result, nil
	}

	return nil, &apperrors.Error{
		Kind:    apperrors.KindExternalService,
		Message: "all enhancement providers failed",
		Err:     errors.Join(failures...),
	}
}

func (g *Gateway) recordUsage(workspaceID uuid.UUID, providerName string, elapsed time.Duration, outcome, errorMsg string) error {
	usage := &models.EnhancementUsage{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Provider:    providerName,
		DurationMS:  elapsed.Milliseconds(),
		Outcome:     outcome,
	}
	if errorMsg != "" {
		usage.ErrorMessage = sql.NullString{String: errorMsg, Valid: true}
	}
	return g.usage.RecordEnhancementUsage(usage)
}
