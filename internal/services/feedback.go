package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/wolverine5550/lexsona-backend/internal/clients/redis"
	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/repos"
	"github.com/wolverine5550/lexsona-backend/internal/types"
	"github.com/wolverine5550/lexsona-backend/internal/utils"
)

// decayHalfLife is the age at which a feedback signal's weight has fallen to
// 1/e; recent interactions dominate the derived preferences.
const decayHalfLife = 30 * 24 * time.Hour

var validFeedbackTypes = map[string]bool{
	types.FeedbackLike:     true,
	types.FeedbackDislike:  true,
	types.FeedbackSave:     true,
	types.FeedbackListen:   true,
	types.FeedbackComplete: true,
}

var validPodcastStyles = map[string]bool{
	"interview":   true,
	"narrative":   true,
	"educational": true,
	"debate":      true,
}

type FeedbackInput struct {
	UserID       uuid.UUID `json:"user_id"`
	PodcastID    uuid.UUID `json:"podcast_id"`
	FeedbackType string    `json:"feedback_type"`
	Rating       *int      `json:"rating,omitempty"`
	Categories   []string  `json:"categories,omitempty"`
	PodcastStyle string    `json:"podcast_style,omitempty"`
}

// FeedbackService owns the feedback log and the derived preference weights.
// It is constructed with injected dependencies and has an explicit
// Start/Stop lifecycle instead of process-wide state, so multiple instances
// can run isolated schedules (and tests can drive it directly).
type FeedbackService interface {
	RecordFeedback(ctx context.Context, input FeedbackInput) (*types.PodcastFeedback, error)
	// ProcessFeedbackQueue pulls up to the configured batch of unprocessed
	// rows and recomputes each affected user's preference adjustment from
	// their entire history. Per-item failures are logged and skipped.
	ProcessFeedbackQueue(ctx context.Context) (int, error)
	// UpdateMetrics recomputes a podcast's aggregate engagement counters
	// from its full feedback history and upserts them.
	UpdateMetrics(ctx context.Context, podcastID uuid.UUID) error
	Start(ctx context.Context)
	Stop()
}

type feedbackService struct {
	db  *gorm.DB
	log *logger.Logger

	feedbackRepo repos.PodcastFeedbackRepo
	adjRepo      repos.PreferenceAdjustmentRepo
	metricsRepo  repos.PodcastMetricsRepo
	cache        redisclient.MatchCache

	batchSize int
	interval  time.Duration
	now       func() time.Time

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewFeedbackService(
	db *gorm.DB,
	baseLog *logger.Logger,
	feedbackRepo repos.PodcastFeedbackRepo,
	adjRepo repos.PreferenceAdjustmentRepo,
	metricsRepo repos.PodcastMetricsRepo,
	cache redisclient.MatchCache,
) FeedbackService {
	log := baseLog.With("service", "FeedbackService")
	return &feedbackService{
		db:           db,
		log:          log,
		feedbackRepo: feedbackRepo,
		adjRepo:      adjRepo,
		metricsRepo:  metricsRepo,
		cache:        cache,
		batchSize:    utils.GetEnvAsInt("FEEDBACK_BATCH_SIZE", 100, log),
		interval:     time.Duration(utils.GetEnvAsInt("FEEDBACK_INTERVAL_MINUTES", 15, log)) * time.Minute,
		now:          time.Now,
	}
}

func (s *feedbackService) RecordFeedback(ctx context.Context, input FeedbackInput) (*types.PodcastFeedback, error) {
	if input.UserID == uuid.Nil || input.PodcastID == uuid.Nil {
		return nil, fmt.Errorf("user_id and podcast_id are required")
	}
	if !validFeedbackTypes[input.FeedbackType] {
		return nil, fmt.Errorf("invalid feedback type %q", input.FeedbackType)
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}
	if input.PodcastStyle != "" && !validPodcastStyles[input.PodcastStyle] {
		return nil, fmt.Errorf("invalid podcast style %q", input.PodcastStyle)
	}

	row := &types.PodcastFeedback{
		UserID:       input.UserID,
		PodcastID:    input.PodcastID,
		FeedbackType: input.FeedbackType,
		Rating:       input.Rating,
		PodcastStyle: input.PodcastStyle,
		CreatedAt:    s.now().UTC(),
	}
	if len(input.Categories) > 0 {
		row.Categories = encodeJSON(input.Categories)
	}

	created, err := s.feedbackRepo.Create(ctx, nil, []*types.PodcastFeedback{row})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *feedbackService) ProcessFeedbackQueue(ctx context.Context) (int, error) {
	// Serialize runs within this instance; the conditional MarkProcessed
	// keeps overlapping workers from double-counting a row.
	s.runMu.Lock()
	defer s.runMu.Unlock()

	batch, err := s.feedbackRepo.GetUnprocessed(ctx, nil, s.batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, row := range batch {
		if err := s.processOne(ctx, row); err != nil {
			s.log.Error("Feedback item failed, continuing batch",
				"feedback_id", row.ID, "user_id", row.UserID, "error", err)
			continue
		}
		processed++
	}

	if processed > 0 {
		s.log.Info("Feedback batch processed", "count", processed, "batch", len(batch))
	}
	return processed, nil
}

func (s *feedbackService) processOne(ctx context.Context, row *types.PodcastFeedback) error {
	history, err := s.feedbackRepo.GetByUserID(ctx, nil, row.UserID)
	if err != nil {
		return err
	}

	adjustment := computeAdjustment(row.UserID, history, s.now().UTC())
	if _, err := s.adjRepo.Upsert(ctx, nil, adjustment); err != nil {
		return err
	}

	// A metrics failure for this podcast must not block the row itself.
	if err := s.UpdateMetrics(ctx, row.PodcastID); err != nil {
		s.log.Warn("Metrics update failed", "podcast_id", row.PodcastID, "error", err)
	}

	claimed, err := s.feedbackRepo.MarkProcessed(ctx, nil, row.ID)
	if err != nil {
		return err
	}
	if !claimed {
		s.log.Debug("Feedback row already processed by another run", "feedback_id", row.ID)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, row.UserID.String()); err != nil {
			s.log.Warn("Match cache invalidation failed", "user_id", row.UserID, "error", err)
		}
	}
	return nil
}

func (s *feedbackService) UpdateMetrics(ctx context.Context, podcastID uuid.UUID) error {
	history, err := s.feedbackRepo.GetByPodcastID(ctx, nil, podcastID)
	if err != nil {
		return err
	}

	metrics := &types.PodcastMetrics{
		PodcastID: podcastID,
		UpdatedAt: s.now().UTC(),
	}
	ratingSum := 0
	for _, row := range history {
		metrics.TotalFeedback++
		switch row.FeedbackType {
		case types.FeedbackLike:
			metrics.Likes++
		case types.FeedbackDislike:
			metrics.Dislikes++
		case types.FeedbackSave:
			metrics.Saves++
		case types.FeedbackListen:
			metrics.Listens++
		case types.FeedbackComplete:
			metrics.Completions++
		}
		if row.Rating != nil {
			ratingSum += *row.Rating
			metrics.RatingCount++
		}
	}
	if metrics.RatingCount > 0 {
		metrics.AverageRating = float64(ratingSum) / float64(metrics.RatingCount)
	}

	_, err = s.metricsRepo.Upsert(ctx, nil, metrics)
	return err
}

func (s *feedbackService) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info("Feedback worker started", "interval", s.interval.String())
		for {
			select {
			case <-runCtx.Done():
				s.log.Info("Feedback worker stopped")
				return
			case <-ticker.C:
				if _, err := s.ProcessFeedbackQueue(runCtx); err != nil {
					s.log.Warn("Feedback queue run failed", "error", err)
				}
			}
		}
	}()
}

func (s *feedbackService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// decayWeight applies the 30-day exponential decay to a signal of the given
// age: weight = exp(-age_ms / half_life_ms).
func decayWeight(age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	return math.Exp(-float64(age.Milliseconds()) / float64(decayHalfLife.Milliseconds()))
}

// computeAdjustment rebuilds the full preference adjustment from a user's
// entire feedback history. It is a pure function of (history, now), so
// reprocessing is idempotent.
func computeAdjustment(userID uuid.UUID, history []*types.PodcastFeedback, now time.Time) *types.PreferenceAdjustment {
	topicWeights := make(map[string]float64)
	styleWeights := map[string]float64{
		"interview":   0,
		"narrative":   0,
		"educational": 0,
		"debate":      0,
	}

	for _, row := range history {
		weight := decayWeight(now.Sub(row.CreatedAt))

		// Positive interactions drive topic weights.
		if row.FeedbackType == types.FeedbackLike || row.FeedbackType == types.FeedbackSave {
			for _, topic := range decodeStringSlice(row.Categories) {
				topicWeights[normalizeTopic(topic)] += weight
			}
		}

		// Strong engagement signals drive style weights.
		if (row.FeedbackType == types.FeedbackLike || row.FeedbackType == types.FeedbackComplete) &&
			validPodcastStyles[row.PodcastStyle] {
			styleWeights[row.PodcastStyle] += weight
		}
	}

	topicTotal := 0.0
	for _, w := range topicWeights {
		topicTotal += w
	}
	if topicTotal > 0 {
		for t := range topicWeights {
			topicWeights[t] /= topicTotal
		}
	}

	styleTotal := 0.0
	for _, w := range styleWeights {
		styleTotal += w
	}
	if styleTotal > 0 {
		for k := range styleWeights {
			styleWeights[k] /= styleTotal
		}
	} else {
		for k := range styleWeights {
			styleWeights[k] = 0.25
		}
	}

	return &types.PreferenceAdjustment{
		UserID:           userID,
		TopicWeights:     encodeJSON(topicWeights),
		StyleInterview:   styleWeights["interview"],
		StyleNarrative:   styleWeights["narrative"],
		StyleEducational: styleWeights["educational"],
		StyleDebate:      styleWeights["debate"],
		LastAdjusted:     now,
	}
}
