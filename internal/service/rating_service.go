package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// maxFeedbackLen is the embed field value limit.
const maxFeedbackLen = 1024

// RatingService forwards satisfaction ratings to the feedback channel.
type RatingService struct {
	directory  platform.ChannelDirectory
	notifier   platform.NotificationSink
	dispatcher events.Dispatcher
	logger     *zap.Logger
	minScore   int
	maxScore   int
	now        func() time.Time
}

// NewRatingService constructs the service.
func NewRatingService(directory platform.ChannelDirectory, notifier platform.NotificationSink, dispatcher events.Dispatcher, logger *zap.Logger, minScore, maxScore int) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{
		directory:  directory,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		minScore:   minScore,
		maxScore:   maxScore,
		now:        time.Now,
	}
}

// Rate validates and acknowledges a rating, then forwards it best-effort.
func (s *RatingService) Rate(ctx context.Context, settings domain.Settings, actor domain.Actor, score int, feedback string, responder platform.Responder) (*domain.Rating, error) {
	if !auth.CanRate(actor, settings) {
		return nil, apperrors.NewForbidden("🚫 You're not allowed to rate.")
	}
	if score < s.minScore || score > s.maxScore {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Score must be between %d and %d.", s.minScore, s.maxScore),
			map[string]any{"score": score})
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" || utf8.RuneCountInString(feedback) > maxFeedbackLen {
		return nil, apperrors.NewValidationError("Feedback must be between 1 and 1024 characters.", nil)
	}

	rating := domain.Rating{
		RaterID:  actor.ID,
		Score:    score,
		MaxScore: s.maxScore,
		Feedback: feedback,
	}
	if err := responder.Reply(ctx, platform.Reply{Content: "✅ Thanks for your rating!", Ephemeral: true}); err != nil {
		return nil, apperrors.NewTransportFailure("acknowledge rating", err)
	}

	forwarded := s.forward(ctx, settings, rating)
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventRatingSubmitted,
			ActorID:   actor.ID,
			Timestamp: s.now(),
			Payload:   events.RatingSubmittedPayload{Score: score, Forwarded: forwarded},
		})
	}
	return &rating, nil
}

func (s *RatingService) forward(ctx context.Context, settings domain.Settings, rating domain.Rating) bool {
	if settings.FeedbackChannelID == "" {
		return false
	}
	ch, err := s.directory.FetchChannel(ctx, settings.FeedbackChannelID)
	if err != nil || ch == nil {
		s.logger.Warn("feedback channel unavailable",
			zap.String("channel_id", settings.FeedbackChannelID),
			zap.Error(err))
		return false
	}
	if err := s.notifier.SendToChannel(ctx, ch.ID, ratingMessage(rating, s.now())); err != nil {
		s.logger.Warn("rating forward failed", zap.String("channel_id", ch.ID), zap.Error(err))
		return false
	}
	return true
}
