package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/caseforge/backend/internal/catalog"
	"github.com/caseforge/backend/internal/domain"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	leaderboardCacheTTL     = 30 * time.Second
)

// StatsService produces the read-only aggregate views: per-domain stats,
// leaderboards and platform-wide counts. It never mutates any entity.
type StatsService struct {
	problemRepo  domain.ProblemRepository
	solutionRepo domain.SolutionRepository
	progressRepo domain.DomainProgressRepository
	userRepo     domain.UserRepository
	catalog      *catalog.Catalog
	cache        *redis.Client // optional; nil disables leaderboard caching
	tracer       trace.Tracer
	logger       *zap.Logger
}

// NewStatsService creates a new stats service. cache may be nil when Redis
// is not configured.
func NewStatsService(
	problemRepo domain.ProblemRepository,
	solutionRepo domain.SolutionRepository,
	progressRepo domain.DomainProgressRepository,
	userRepo domain.UserRepository,
	cat *catalog.Catalog,
	cache *redis.Client,
	tracer trace.Tracer,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		problemRepo:  problemRepo,
		solutionRepo: solutionRepo,
		progressRepo: progressRepo,
		userRepo:     userRepo,
		catalog:      cat,
		cache:        cache,
		tracer:       tracer,
		logger:       logger,
	}
}

// DomainStats returns problem counts by difficulty and category within a
// domain, plus the domain's total solution count
func (s *StatsService) DomainStats(ctx context.Context, domainName string) (*domain.DomainStats, error) {
	ctx, span := s.tracer.Start(ctx, "StatsService.DomainStats")
	defer span.End()

	span.SetAttributes(attribute.String("stats.domain", domainName))

	if _, ok := s.catalog.Get(domainName); !ok {
		return nil, domain.ErrDomainNotFound
	}

	// Fan-out the three independent aggregation queries
	type result struct {
		difficulties []domain.DifficultyCount
		categories   []domain.CategoryCount
		solutions    int64
		err          error
	}
	diffCh := make(chan result, 1)
	catCh := make(chan result, 1)
	solCh := make(chan result, 1)

	go func() {
		counts, err := s.problemRepo.CountByDifficulty(domainName)
		diffCh <- result{difficulties: counts, err: err}
	}()
	go func() {
		counts, err := s.problemRepo.CountByCategory(domainName)
		catCh <- result{categories: counts, err: err}
	}()
	go func() {
		count, err := s.solutionRepo.CountByDomain(domainName)
		solCh <- result{solutions: count, err: err}
	}()

	diffRes, catRes, solRes := <-diffCh, <-catCh, <-solCh
	for _, res := range []result{diffRes, catRes, solRes} {
		if res.err != nil {
			return nil, res.err
		}
	}

	stats := &domain.DomainStats{
		Domain:                 domainName,
		TotalSolutions:         solRes.solutions,
		DifficultyDistribution: make(map[domain.Difficulty]int),
		CategoryDistribution:   make(map[string]int),
	}
	for _, c := range diffRes.difficulties {
		stats.DifficultyDistribution[c.Difficulty] = int(c.Count)
		stats.TotalProblems += c.Count
	}
	for _, c := range catRes.categories {
		stats.CategoryDistribution[c.Category] = int(c.Count)
	}
	return stats, nil
}

// Leaderboard ranks users within a domain by experience points descending,
// ties broken by most recent activity. The view is computed from
// DomainProgress rows only; no ranking state is persisted. Results are
// cached in Redis for a short TTL when a cache is configured.
func (s *StatsService) Leaderboard(ctx context.Context, domainName string, limit int) (*domain.Leaderboard, error) {
	ctx, span := s.tracer.Start(ctx, "StatsService.Leaderboard")
	defer span.End()

	span.SetAttributes(
		attribute.String("stats.domain", domainName),
		attribute.Int("stats.limit", limit),
	)

	if _, ok := s.catalog.Get(domainName); !ok {
		return nil, domain.ErrDomainNotFound
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%d", domainName, limit)
	if cached := s.cachedLeaderboard(ctx, cacheKey); cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	rows, err := s.progressRepo.FindTopByDomain(domainName, limit)
	if err != nil {
		return nil, err
	}

	board := &domain.Leaderboard{
		Domain:  domainName,
		Entries: make([]domain.LeaderboardEntry, len(rows)),
	}

	usernames := s.resolveUsernames(rows)
	for i, row := range rows {
		board.Entries[i] = domain.LeaderboardEntry{
			Rank:             i + 1,
			UserID:           row.UserID,
			Username:         usernames[row.UserID],
			Level:            row.Level,
			ExperiencePoints: row.ExperiencePoints,
			ProblemsSolved:   row.ProblemsSolved,
			AverageScore:     row.AverageScore,
			LastActivity:     row.LastActivity,
		}
	}

	s.storeLeaderboard(ctx, cacheKey, board)
	return board, nil
}

// PlatformStats returns global counts and distribution histograms
func (s *StatsService) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	ctx, span := s.tracer.Start(ctx, "StatsService.PlatformStats")
	defer span.End()

	type counts struct {
		problems     int64
		users        int64
		solutions    int64
		byDifficulty []domain.DifficultyCount
		byDomain     []domain.DomainCount
	}
	var c counts
	errCh := make(chan error, 5)

	go func() { var err error; c.problems, err = s.problemRepo.Count(); errCh <- err }()
	go func() { var err error; c.users, err = s.userRepo.Count(); errCh <- err }()
	go func() { var err error; c.solutions, err = s.solutionRepo.Count(); errCh <- err }()
	go func() { var err error; c.byDifficulty, err = s.problemRepo.CountByDifficulty(""); errCh <- err }()
	go func() { var err error; c.byDomain, err = s.problemRepo.CountByDomain(); errCh <- err }()

	for i := 0; i < 5; i++ {
		if err := <-errCh; err != nil {
			return nil, err
		}
	}

	stats := &domain.PlatformStats{
		TotalProblems:          c.problems,
		TotalUsers:             c.users,
		TotalSolutions:         c.solutions,
		DifficultyDistribution: make(map[domain.Difficulty]int),
		DomainDistribution:     make(map[string]int),
	}
	for _, dc := range c.byDifficulty {
		stats.DifficultyDistribution[dc.Difficulty] = int(dc.Count)
	}
	for _, dc := range c.byDomain {
		stats.DomainDistribution[dc.Domain] = int(dc.Count)
	}
	return stats, nil
}

// DomainProblemCounts returns the per-domain problem counts used to decorate
// the domain catalog listing
func (s *StatsService) DomainProblemCounts(ctx context.Context) (map[string]int64, error) {
	ctx, span := s.tracer.Start(ctx, "StatsService.DomainProblemCounts")
	defer span.End()

	counts, err := s.problemRepo.CountByDomain()
	if err != nil {
		return nil, err
	}
	byDomain := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDomain[c.Domain] = c.Count
	}
	return byDomain, nil
}

func (s *StatsService) resolveUsernames(rows []domain.DomainProgress) map[uuid.UUID]string {
	usernames := make(map[uuid.UUID]string, len(rows))
	if len(rows) == 0 {
		return usernames
	}
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.UserID
	}
	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		// Usernames are decoration; the leaderboard is still valid without
		s.logger.Warn("Failed to resolve leaderboard usernames", zap.Error(err))
		return usernames
	}
	for _, u := range users {
		usernames[u.ID] = u.Username
	}
	return usernames
}

func (s *StatsService) cachedLeaderboard(ctx context.Context, key string) *domain.Leaderboard {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Leaderboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var board domain.Leaderboard
	if err := json.Unmarshal(data, &board); err != nil {
		return nil
	}
	return &board
}

func (s *StatsService) storeLeaderboard(ctx context.Context, key string, board *domain.Leaderboard) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, leaderboardCacheTTL).Err(); err != nil {
		s.logger.Warn("Leaderboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
