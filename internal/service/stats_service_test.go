package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/caseforge/backend/internal/catalog"
	"github.com/caseforge/backend/internal/domain"
)

type statsServiceFixture struct {
	svc          *StatsService
	problemRepo  *fakeProblemRepo
	solutionRepo *fakeSolutionRepo
	progressRepo *fakeProgressRepo
	userRepo     *fakeUserRepo
}

func newStatsServiceFixture(t *testing.T) *statsServiceFixture {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	f := &statsServiceFixture{
		problemRepo:  newFakeProblemRepo(),
		solutionRepo: newFakeSolutionRepo(),
		progressRepo: newFakeProgressRepo(),
		userRepo:     newFakeUserRepo(),
	}
	tracer := noop.NewTracerProvider().Tracer("test")
	f.svc = NewStatsService(f.problemRepo, f.solutionRepo, f.progressRepo, f.userRepo, cat, nil, tracer, zap.NewNop())
	return f
}

func (f *statsServiceFixture) addProgress(t *testing.T, username string, xp int, lastActivity time.Time) uuid.UUID {
	t.Helper()
	user := &domain.User{ID: uuid.New(), Email: username + "@example.com", Username: username}
	if err := f.userRepo.Create(user); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	_, err := f.progressRepo.Mutate(context.Background(), user.ID, testDomain, func(p *domain.DomainProgress) error {
		p.ExperiencePoints = xp
		p.ProblemsSolved = xp / 100
		p.LastActivity = lastActivity
		return nil
	})
	if err != nil {
		t.Fatalf("seeding progress: %v", err)
	}
	return user.ID
}

func TestLeaderboardOrdering(t *testing.T) {
	f := newStatsServiceFixture(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	third := f.addProgress(t, "carol", 300, base)
	first := f.addProgress(t, "alice", 900, base)
	second := f.addProgress(t, "bob", 600, base)

	board, err := f.svc.Leaderboard(context.Background(), testDomain, 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}

	if len(board.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(board.Entries))
	}
	wantOrder := []uuid.UUID{first, second, third}
	wantNames := []string{"alice", "bob", "carol"}
	for i, entry := range board.Entries {
		if entry.Rank != i+1 {
			t.Errorf("Entries[%d].Rank = %d, want %d", i, entry.Rank, i+1)
		}
		if entry.UserID != wantOrder[i] {
			t.Errorf("Entries[%d].UserID = %v, want %v", i, entry.UserID, wantOrder[i])
		}
		if entry.Username != wantNames[i] {
			t.Errorf("Entries[%d].Username = %q, want %q", i, entry.Username, wantNames[i])
		}
	}
}

func TestLeaderboardTieBreak(t *testing.T) {
	f := newStatsServiceFixture(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	older := f.addProgress(t, "older", 500, base)
	recent := f.addProgress(t, "recent", 500, base.Add(time.Hour))

	board, err := f.svc.Leaderboard(context.Background(), testDomain, 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(board.Entries))
	}
	// Equal XP: most recent activity ranks first.
	if board.Entries[0].UserID != recent {
		t.Errorf("Entries[0].UserID = %v, want the more recently active user %v", board.Entries[0].UserID, recent)
	}
	if board.Entries[1].UserID != older {
		t.Errorf("Entries[1].UserID = %v, want %v", board.Entries[1].UserID, older)
	}
}

func TestLeaderboardLimitClamp(t *testing.T) {
	f := newStatsServiceFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero falls back to default", 0, 10},
		{"negative falls back to default", -3, 10},
		{"in range passes through", 25, 25},
		{"above max clamps", 5000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Leaderboard(ctx, testDomain, tt.limit); err != nil {
				t.Fatalf("Leaderboard: %v", err)
			}
			if f.progressRepo.lastLimit != tt.wantLimit {
				t.Errorf("repo limit = %d, want %d", f.progressRepo.lastLimit, tt.wantLimit)
			}
		})
	}
}

func TestLeaderboardUnknownDomain(t *testing.T) {
	f := newStatsServiceFixture(t)

	_, err := f.svc.Leaderboard(context.Background(), "Astrology", 10)
	if !errors.Is(err, domain.ErrDomainNotFound) {
		t.Fatalf("err = %v, want ErrDomainNotFound", err)
	}
}

func TestDomainStats(t *testing.T) {
	f := newStatsServiceFixture(t)
	ctx := context.Background()

	seed := []struct {
		difficulty domain.Difficulty
		category   string
		dom        string
	}{
		{domain.DifficultyEasy, "Market Entry Strategy", testDomain},
		{domain.DifficultyMedium, "Market Entry Strategy", testDomain},
		{domain.DifficultyMedium, "Corporate Strategy", testDomain},
		{domain.DifficultyHard, "Valuation Analysis", "Finance & Investment"},
	}
	for _, s := range seed {
		err := f.problemRepo.Create(&domain.Problem{
			ID:         uuid.New(),
			Title:      "case",
			Difficulty: s.difficulty,
			Category:   s.category,
			Domain:     s.dom,
		})
		if err != nil {
			t.Fatalf("seeding problem: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		err := f.solutionRepo.Create(&domain.Solution{
			ProblemID:   uuid.New(),
			Content:     "x",
			Domain:      testDomain,
			SubmittedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("seeding solution: %v", err)
		}
	}

	stats, err := f.svc.DomainStats(ctx, testDomain)
	if err != nil {
		t.Fatalf("DomainStats: %v", err)
	}

	if stats.TotalProblems != 3 {
		t.Errorf("TotalProblems = %d, want 3", stats.TotalProblems)
	}
	if stats.TotalSolutions != 5 {
		t.Errorf("TotalSolutions = %d, want 5", stats.TotalSolutions)
	}
	if got := stats.DifficultyDistribution[domain.DifficultyMedium]; got != 2 {
		t.Errorf("Medium count = %d, want 2", got)
	}
	if got := stats.CategoryDistribution["Market Entry Strategy"]; got != 2 {
		t.Errorf("Market Entry Strategy count = %d, want 2", got)
	}
	if _, ok := stats.CategoryDistribution["Valuation Analysis"]; ok {
		t.Error("category from another domain leaked into the distribution")
	}

	if _, err := f.svc.DomainStats(ctx, "Astrology"); !errors.Is(err, domain.ErrDomainNotFound) {
		t.Errorf("unknown domain err = %v, want ErrDomainNotFound", err)
	}
}

func TestPlatformStats(t *testing.T) {
	f := newStatsServiceFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		err := f.problemRepo.Create(&domain.Problem{
			ID:         uuid.New(),
			Title:      "case",
			Difficulty: domain.DifficultyEasy,
			Category:   "Pricing Strategy",
			Domain:     "Marketing & Growth",
		})
		if err != nil {
			t.Fatalf("seeding problem: %v", err)
		}
	}
	if err := f.userRepo.Create(&domain.User{ID: uuid.New(), Email: "a@example.com", Username: "a"}); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	if err := f.solutionRepo.Create(&domain.Solution{ProblemID: uuid.New(), Content: "x", Domain: "Marketing & Growth", SubmittedAt: time.Now()}); err != nil {
		t.Fatalf("seeding solution: %v", err)
	}

	stats, err := f.svc.PlatformStats(ctx)
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	if stats.TotalProblems != 4 {
		t.Errorf("TotalProblems = %d, want 4", stats.TotalProblems)
	}
	if stats.TotalUsers != 1 {
		t.Errorf("TotalUsers = %d, want 1", stats.TotalUsers)
	}
	if stats.TotalSolutions != 1 {
		t.Errorf("TotalSolutions = %d, want 1", stats.TotalSolutions)
	}
	if got := stats.DomainDistribution["Marketing & Growth"]; got != 4 {
		t.Errorf("DomainDistribution = %d, want 4", got)
	}
}

func TestDomainProblemCounts(t *testing.T) {
	f := newStatsServiceFixture(t)

	domains := []string{testDomain, testDomain, "Data Analytics"}
	for _, d := range domains {
		err := f.problemRepo.Create(&domain.Problem{
			ID:         uuid.New(),
			Title:      "case",
			Difficulty: domain.DifficultyEasy,
			Category:   "c",
			Domain:     d,
		})
		if err != nil {
			t.Fatalf("seeding problem: %v", err)
		}
	}

	counts, err := f.svc.DomainProblemCounts(context.Background())
	if err != nil {
		t.Fatalf("DomainProblemCounts: %v", err)
	}
	if counts[testDomain] != 2 {
		t.Errorf("count[%s] = %d, want 2", testDomain, counts[testDomain])
	}
	if counts["Data Analytics"] != 1 {
		t.Errorf("count[Data Analytics] = %d, want 1", counts["Data Analytics"])
	}
}
