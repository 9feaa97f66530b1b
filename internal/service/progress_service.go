package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/caseforge/backend/internal/catalog"
	"github.com/caseforge/backend/internal/domain"
	"github.com/caseforge/backend/internal/infrastructure"
)

// baseSubmissionXP is the minimum XP granted per submission. Every submission
// earns at least this much, including unscored ones and scores of 0.
const baseSubmissionXP = 10

// ProgressService maintains the per-(user, domain) progression aggregates.
// It is the only component allowed to mutate DomainProgress rows, and it does
// so exclusively through the repository's serialized Mutate path.
type ProgressService struct {
	progressRepo domain.DomainProgressRepository
	catalog      *catalog.Catalog
	metrics      *infrastructure.TelemetryMetrics
	tracer       trace.Tracer
	logger       *zap.Logger
	now          func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(
	progressRepo domain.DomainProgressRepository,
	cat *catalog.Catalog,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		catalog:      cat,
		metrics:      metrics,
		tracer:       tracer,
		logger:       logger,
		now:          time.Now,
	}
}

// xpForSubmission computes the XP granted by one submission:
// max(baseSubmissionXP, score/2) when a score is present, else the flat base.
func xpForSubmission(score *int) int {
	if score == nil {
		return baseSubmissionXP
	}
	if xp := *score / 2; xp > baseSubmissionXP {
		return xp
	}
	return baseSubmissionXP
}

// nextStreak advances the consecutive-activity counter. The activity period
// is a UTC day: a repeat on the same day leaves the streak unchanged,
// activity on the following day extends it, a longer gap resets it to 1.
func nextStreak(current int, lastActivity, now time.Time) int {
	if lastActivity.IsZero() || current == 0 {
		return 1
	}
	last := lastActivity.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	switch today.Sub(last) {
	case 0:
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

// RecordSubmission folds one solution submission into the (user, domain)
// aggregate. Unknown domains are rejected with domain.ErrDomainNotFound
// rather than silently skipping the level computation. A nil score counts as
// 0 toward the running average but still earns the base XP.
func (s *ProgressService) RecordSubmission(ctx context.Context, userID uuid.UUID, domainName string, score *int, timeTakenMinutes int) (*domain.DomainProgress, error) {
	ctx, span := s.tracer.Start(ctx, "ProgressService.RecordSubmission")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("progress.domain", domainName),
	)

	if userID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	if timeTakenMinutes < 0 {
		return nil, domain.ErrInvalidInput
	}
	if score != nil && *score < 0 {
		return nil, domain.ErrInvalidInput
	}

	dom, ok := s.catalog.Get(domainName)
	if !ok {
		return nil, domain.ErrDomainNotFound
	}

	xpGained := xpForSubmission(score)
	span.SetAttributes(attribute.Int("progress.xp_gained", xpGained))

	var leveledUp bool
	updated, err := s.progressRepo.Mutate(ctx, userID, domainName, func(p *domain.DomainProgress) error {
		scoreValue := 0
		if score != nil {
			scoreValue = *score
		}

		now := s.now()
		p.AverageScore = (p.AverageScore*float64(p.ProblemsSolved) + float64(scoreValue)) / float64(p.ProblemsSolved+1)
		p.ProblemsSolved++
		p.ExperiencePoints += xpGained
		p.TimeSpentMinutes += timeTakenMinutes
		p.Streak = nextStreak(p.Streak, p.LastActivity, now)
		p.LastActivity = now

		previousLevel := p.Level
		p.Level = dom.LevelForXP(p.ExperiencePoints)
		leveledUp = p.Level > previousLevel

		p.SkillsUnlocked = mergeSkills(p.SkillsUnlocked, dom.SkillsForLevel(p.Level))
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record submission progress",
			zap.String("user_id", userID.String()),
			zap.String("domain", domainName),
			zap.Error(err),
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.XPAwarded.Add(ctx, int64(xpGained),
			metric.WithAttributes(attribute.String("domain", domainName)))
		if leveledUp {
			s.metrics.LevelUps.Add(ctx, 1,
				metric.WithAttributes(attribute.String("domain", domainName)))
		}
	}

	if leveledUp {
		s.logger.Info("User leveled up",
			zap.String("user_id", userID.String()),
			zap.String("domain", domainName),
			zap.Int("level", updated.Level),
			zap.Int("experience_points", updated.ExperiencePoints),
		)
	}

	return updated, nil
}

// GetProgress returns the stored aggregate for a (user, domain) pair, or a
// freshly materialized zero-state row (not persisted) if the pair has never
// submitted. Reading never requires a prior write.
func (s *ProgressService) GetProgress(ctx context.Context, userID uuid.UUID, domainName string) (*domain.DomainProgress, error) {
	ctx, span := s.tracer.Start(ctx, "ProgressService.GetProgress")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("progress.domain", domainName),
	)

	if _, ok := s.catalog.Get(domainName); !ok {
		return nil, domain.ErrDomainNotFound
	}

	progress, err := s.progressRepo.FindByUserAndDomain(userID, domainName)
	if err != nil {
		if errors.Is(err, domain.ErrProgressNotFound) {
			return domain.NewDomainProgress(userID, domainName), nil
		}
		return nil, err
	}
	return progress, nil
}

// GetAllProgress returns a user's progress rows across all domains
func (s *ProgressService) GetAllProgress(ctx context.Context, userID uuid.UUID) ([]domain.DomainProgress, error) {
	ctx, span := s.tracer.Start(ctx, "ProgressService.GetAllProgress")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID.String()))
	return s.progressRepo.FindByUserID(userID)
}

// LevelTitle resolves the display title for a level within a domain
func (s *ProgressService) LevelTitle(domainName string, level int) string {
	dom, ok := s.catalog.Get(domainName)
	if !ok {
		return ""
	}
	return dom.TitleForLevel(level)
}

// mergeSkills unions newly unlocked skills into the existing set, preserving
// order of first unlock. Skills are never removed.
func mergeSkills(existing pq.StringArray, unlocked []string) pq.StringArray {
	seen := make(map[string]struct{}, len(existing))
	for _, skill := range existing {
		seen[skill] = struct{}{}
	}
	merged := existing
	for _, skill := range unlocked {
		if _, ok := seen[skill]; !ok {
			merged = append(merged, skill)
			seen[skill] = struct{}{}
		}
	}
	if merged == nil {
		merged = pq.StringArray{}
	}
	return merged
}
