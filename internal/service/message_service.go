package service

import (
	"context"
	"time"

	"chatonline-world/backend/internal/models"
	"chatonline-world/backend/internal/profanity"
	"chatonline-world/backend/internal/repository"
	apperrors "chatonline-world/backend/pkg/errors"
	"chatonline-world/backend/pkg/logger"
	"chatonline-world/backend/pkg/observability"
)

// Notifier is told about every message once it is stored
type Notifier interface {
	NotifyMessage(message models.MessageDict)
}

// MessageOptions configures a MessageService
type MessageOptions struct {
	TTL              time.Duration
	Profanity        *profanity.Filter
	EnforceProfanity bool
	Notifier         Notifier
	Metrics          *observability.Metrics
	Logger           *logger.Logger
}

type MessageService struct {
	repo    repository.MessageRepository
	opts    MessageOptions
	log     *logger.Logger
	nowFunc func() time.Time
}

func NewMessageService(repo repository.MessageRepository, opts MessageOptions) *MessageService {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &MessageService{
		repo:    repo,
		opts:    opts,
		log:     log,
		nowFunc: time.Now,
	}
}

// PurgeExpired deletes every message older than the configured TTL
func (s *MessageService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.nowFunc().UTC().Add(-s.opts.TTL)

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, apperrors.NewInternalServerError("PURGE_FAILED", "Failed to purge expired messages").AsText().WithCause(err)
	}
	if deleted > 0 {
		s.log.WithContext(ctx).Info("Purged expired messages", "count", deleted, "cutoff", models.FormatTime(cutoff))
		s.opts.Metrics.MessagesPurged(ctx, deleted)
	}
	return deleted, nil
}

// List purges expired messages, then returns the ones matching params,
// newest first.
func (s *MessageService) List(ctx context.Context, params ListParams) ([]models.Message, error) {
	if _, err := s.PurgeExpired(ctx); err != nil {
		return nil, err
	}

	filter, err := params.Filter()
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalServerError("QUERY_FAILED", "Failed to load messages").AsText().WithCause(err)
	}
	return messages, nil
}

// Create validates and stores a new message
func (s *MessageService) Create(ctx context.Context, req CreateMessageRequest) (*models.Message, error) {
	text, lat, lng, err := req.validate()
	if err != nil {
		return nil, err
	}

	if s.opts.EnforceProfanity && s.opts.Profanity.Contains(text) {
		return nil, apperrors.NewBadRequestError("PROHIBITED_LANGUAGE", "Message contains prohibited language").AsText()
	}

	message := &models.Message{
		Message: text,
		Lat:     lat,
		Lng:     lng,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, apperrors.NewInternalServerError("SAVE_FAILED", "Failed to save message").AsText().WithCause(err)
	}

	s.opts.Metrics.MessageCreated(ctx)
	if s.opts.Notifier != nil {
		s.opts.Notifier.NotifyMessage(message.ToDict())
	}

	return message, nil
}
