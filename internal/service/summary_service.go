package service

import (
	"context"
	"errors"

	"chatonline-world/backend/ai"
	"chatonline-world/backend/internal/geocoding"
	"chatonline-world/backend/internal/models"
	"chatonline-world/backend/internal/repository"
	apperrors "chatonline-world/backend/pkg/errors"
	"chatonline-world/backend/pkg/logger"
	"chatonline-world/backend/pkg/observability"
)

// CodeModelResponse marks a failed text-generation call
const CodeModelResponse = "MODEL_RESPONSE_ERROR"

// LocationSummary is the response body of a generated summary
type LocationSummary struct {
	ID          uint    `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description"`
	Summary     string  `json:"summary"`
	PostedAt    string  `json:"posted_at"`
}

type SummaryService struct {
	repo      repository.SummaryRepository
	geocoder  geocoding.Geocoder
	generator ai.Generator
	words     int
	metrics   *observability.Metrics
	log       *logger.Logger
}

func NewSummaryService(
	repo repository.SummaryRepository,
	geocoder geocoding.Geocoder,
	generator ai.Generator,
	words int,
	metrics *observability.Metrics,
	log *logger.Logger,
) *SummaryService {
	if log == nil {
		log = logger.Discard()
	}
	return &SummaryService{
		repo:      repo,
		geocoder:  geocoder,
		generator: generator,
		words:     words,
		metrics:   metrics,
		log:       log,
	}
}

// GenerateLocationSummary geocodes the coordinate, asks the model to
// describe the place and stores the result. Each stage fails fast.
func (s *SummaryService) GenerateLocationSummary(ctx context.Context, lat, lng float64) (*LocationSummary, error) {
	log := s.log.WithContext(ctx)

	description, err := s.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoResults) {
			return nil, apperrors.NewNotFoundError("LOCATION_NOT_FOUND", "No location found")
		}
		s.metrics.UpstreamFailure(ctx, observability.UpstreamGeocoding)
		return nil, apperrors.NewBadGatewayError("GEOCODING_FAILED", "Geocoding service error").WithCause(err)
	}

	text, err := s.generator.Generate(ctx, ai.BuildPrompt(description, s.words))
	if err != nil {
		s.metrics.UpstreamFailure(ctx, observability.UpstreamGeneration)
		detail := err.Error()
		var genErr *ai.GenerationError
		if errors.As(err, &genErr) {
			detail = genErr.Detail
		}
		return nil, apperrors.NewBadGatewayError(CodeModelResponse, "Model response error").
			WithDetails(detail).
			WithCause(err)
	}

	summary := &models.Summary{
		Location: description,
		Summary:  &text,
		Lat:      lat,
		Lng:      lng,
	}
	if err := s.repo.Create(ctx, summary); err != nil {
		log.Error("Generated summary could not be stored", "location", description, "error", err.Error())
		return nil, apperrors.NewInternalServerError("SAVE_FAILED", "Failed to save summary").WithCause(err)
	}

	s.metrics.SummaryGenerated(ctx)
	log.Info("Location summary generated", "id", summary.ID, "location", description)

	return &LocationSummary{
		ID:          summary.ID,
		Lat:         summary.Lat,
		Lng:         summary.Lng,
		Description: description,
		Summary:     text,
		PostedAt:    models.FormatTime(summary.PostedAt),
	}, nil
}

// List returns every stored summary, newest first
func (s *SummaryService) List(ctx context.Context) ([]models.Summary, error) {
	summaries, err := s.repo.ListRecent(ctx)
	if err != nil {
		return nil, apperrors.NewInternalServerError("QUERY_FAILED", "Failed to load summaries").WithCause(err)
	}
	return summaries, nil
}
