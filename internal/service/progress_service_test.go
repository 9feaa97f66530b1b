package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/caseforge/backend/internal/catalog"
	"github.com/caseforge/backend/internal/domain"
)

const testDomain = "Strategy & Consulting"

func newTestProgressService(t *testing.T) (*ProgressService, *fakeProgressRepo) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	repo := newFakeProgressRepo()
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewProgressService(repo, cat, nil, tracer, zap.NewNop()), repo
}

func intPtr(v int) *int { return &v }

func TestXPForSubmission(t *testing.T) {
	tests := []struct {
		name  string
		score *int
		want  int
	}{
		{"nil score earns flat base", nil, 10},
		{"zero score earns base", intPtr(0), 10},
		{"low score floors at base", intPtr(19), 10},
		{"boundary score", intPtr(20), 10},
		{"above boundary", intPtr(22), 11},
		{"half of score", intPtr(500), 250},
		{"max score", intPtr(1000), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := xpForSubmission(tt.score); got != tt.want {
				t.Errorf("xpForSubmission(%v) = %d, want %d", tt.score, got, tt.want)
			}
		})
	}
}

func TestNextStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 15, 30, 0, 0, time.UTC)
	}
	tests := []struct {
		name         string
		current      int
		lastActivity time.Time
		now          time.Time
		want         int
	}{
		{"first ever activity", 0, time.Time{}, day(10), 1},
		{"same day unchanged", 3, day(10), day(10), 3},
		{"same day different hour", 3, day(10).Add(-14 * time.Hour), day(10), 3},
		{"next day extends", 3, day(10), day(11), 4},
		{"two day gap resets", 7, day(10), day(12), 1},
		{"long gap resets", 30, day(1), day(25), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextStreak(tt.current, tt.lastActivity, tt.now); got != tt.want {
				t.Errorf("nextStreak(%d, %v, %v) = %d, want %d",
					tt.current, tt.lastActivity, tt.now, got, tt.want)
			}
		})
	}
}

func TestRecordSubmissionFirstUnscored(t *testing.T) {
	svc, _ := newTestProgressService(t)
	userID := uuid.New()

	p, err := svc.RecordSubmission(context.Background(), userID, testDomain, nil, 45)
	if err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}

	if p.ProblemsSolved != 1 {
		t.Errorf("ProblemsSolved = %d, want 1", p.ProblemsSolved)
	}
	if p.ExperiencePoints != 10 {
		t.Errorf("ExperiencePoints = %d, want 10", p.ExperiencePoints)
	}
	if p.AverageScore != 0 {
		t.Errorf("AverageScore = %f, want 0", p.AverageScore)
	}
	if p.Level != 1 {
		t.Errorf("Level = %d, want 1", p.Level)
	}
	if p.Streak != 1 {
		t.Errorf("Streak = %d, want 1", p.Streak)
	}
	if p.TimeSpentMinutes != 45 {
		t.Errorf("TimeSpentMinutes = %d, want 45", p.TimeSpentMinutes)
	}
	if len(p.SkillsUnlocked) != 0 {
		t.Errorf("SkillsUnlocked = %v, want empty at level 1", p.SkillsUnlocked)
	}
}

func TestRecordSubmissionLevelUp(t *testing.T) {
	svc, _ := newTestProgressService(t)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.RecordSubmission(ctx, userID, testDomain, nil, 30); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	p, err := svc.RecordSubmission(ctx, userID, testDomain, intPtr(1000), 60)
	if err != nil {
		t.Fatalf("second submission: %v", err)
	}

	// 10 base + 500 for the perfect score crosses the 500 XP tier.
	if p.ExperiencePoints != 510 {
		t.Errorf("ExperiencePoints = %d, want 510", p.ExperiencePoints)
	}
	if p.ProblemsSolved != 2 {
		t.Errorf("ProblemsSolved = %d, want 2", p.ProblemsSolved)
	}
	if p.AverageScore != 500 {
		t.Errorf("AverageScore = %f, want 500 (nil score counts as 0)", p.AverageScore)
	}
	if p.Level != 2 {
		t.Errorf("Level = %d, want 2", p.Level)
	}
	if len(p.SkillsUnlocked) != 1 {
		t.Fatalf("SkillsUnlocked = %v, want exactly one skill at level 2", p.SkillsUnlocked)
	}
}

func TestRecordSubmissionRunningAverage(t *testing.T) {
	svc, _ := newTestProgressService(t)
	userID := uuid.New()
	ctx := context.Background()

	scores := []*int{intPtr(800), nil, intPtr(600), intPtr(0), intPtr(350)}
	var last *domain.DomainProgress
	var err error
	for _, score := range scores {
		last, err = svc.RecordSubmission(ctx, userID, testDomain, score, 10)
		if err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
	}

	// (800 + 0 + 600 + 0 + 350) / 5
	if want := 350.0; math.Abs(last.AverageScore-want) > 1e-9 {
		t.Errorf("AverageScore = %f, want %f", last.AverageScore, want)
	}
	// 400 + 10 + 300 + 10 + 175
	if want := 895; last.ExperiencePoints != want {
		t.Errorf("ExperiencePoints = %d, want %d", last.ExperiencePoints, want)
	}
	if last.ProblemsSolved != len(scores) {
		t.Errorf("ProblemsSolved = %d, want %d", last.ProblemsSolved, len(scores))
	}
}

func TestRecordSubmissionXPMonotonic(t *testing.T) {
	svc, _ := newTestProgressService(t)
	userID := uuid.New()
	ctx := context.Background()

	previous := 0
	for i := 0; i < 20; i++ {
		p, err := svc.RecordSubmission(ctx, userID, testDomain, intPtr(i*50), 5)
		if err != nil {
			t.Fatalf("RecordSubmission #%d: %v", i, err)
		}
		if p.ExperiencePoints <= previous {
			t.Fatalf("ExperiencePoints did not increase: %d -> %d", previous, p.ExperiencePoints)
		}
		previous = p.ExperiencePoints
	}
}

func TestRecordSubmissionSkipsLevels(t *testing.T) {
	svc, _ := newTestProgressService(t)
	userID := uuid.New()

	// A burst of perfect scores jumps straight past level 2.
	var p *domain.DomainProgress
	var err error
	for i := 0; i < 4; i++ {
		p, err = svc.RecordSubmission(context.Background(), userID, testDomain, intPtr(1000), 60)
		if err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
	}

	if p.ExperiencePoints != 2000 {
		t.Errorf("ExperiencePoints = %d, want 2000", p.ExperiencePoints)
	}
	if p.Level != 3 {
		t.Errorf("Level = %d, want 3 (1500 XP tier)", p.Level)
	}
	if len(p.SkillsUnlocked) != 2 {
		t.Errorf("SkillsUnlocked = %v, want two skills at level 3", p.SkillsUnlocked)
	}
}

func TestRecordSubmissionUnknownDomain(t *testing.T) {
	svc, repo := newTestProgressService(t)

	_, err := svc.RecordSubmission(context.Background(), uuid.New(), "Astrology", intPtr(500), 10)
	if !errors.Is(err, domain.ErrDomainNotFound) {
		t.Fatalf("err = %v, want ErrDomainNotFound", err)
	}
	if len(repo.rows) != 0 {
		t.Errorf("rejected submission must not create progress rows, found %d", len(repo.rows))
	}
}

func TestRecordSubmissionInvalidInput(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID uuid.UUID
		score  *int
		taken  int
	}{
		{"nil user id", uuid.Nil, intPtr(100), 10},
		{"negative score", uuid.New(), intPtr(-1), 10},
		{"negative time taken", uuid.New(), intPtr(100), -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordSubmission(ctx, tt.userID, testDomain, tt.score, tt.taken)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRecordSubmissionConcurrent(t *testing.T) {
	svc, _ := newTestProgressService(t)
	userID := uuid.New()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordSubmission(ctx, userID, testDomain, intPtr(0), 1)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("concurrent RecordSubmission: %v", err)
		}
	}

	p, err := svc.GetProgress(ctx, userID, testDomain)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if p.ProblemsSolved != workers {
		t.Errorf("ProblemsSolved = %d, want %d (lost updates)", p.ProblemsSolved, workers)
	}
	if p.ExperiencePoints != workers*10 {
		t.Errorf("ExperiencePoints = %d, want %d", p.ExperiencePoints, workers*10)
	}
	if p.TimeSpentMinutes != workers {
		t.Errorf("TimeSpentMinutes = %d, want %d", p.TimeSpentMinutes, workers)
	}
}

func TestGetProgressZeroState(t *testing.T) {
	svc, repo := newTestProgressService(t)
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := svc.GetProgress(ctx, userID, testDomain)
		if err != nil {
			t.Fatalf("GetProgress: %v", err)
		}
		if p.Level != 1 || p.ExperiencePoints != 0 || p.ProblemsSolved != 0 || p.Streak != 0 {
			t.Errorf("zero state = %+v, want level 1 with all counters at 0", p)
		}
		if p.SkillsUnlocked == nil || len(p.SkillsUnlocked) != 0 {
			t.Errorf("SkillsUnlocked = %v, want empty non-nil slice", p.SkillsUnlocked)
		}
	}

	// Reading must not materialize rows.
	if len(repo.rows) != 0 {
		t.Errorf("GetProgress persisted %d rows, want 0", len(repo.rows))
	}
}

func TestGetProgressUnknownDomain(t *testing.T) {
	svc, _ := newTestProgressService(t)

	_, err := svc.GetProgress(context.Background(), uuid.New(), "Astrology")
	if !errors.Is(err, domain.ErrDomainNotFound) {
		t.Fatalf("err = %v, want ErrDomainNotFound", err)
	}
}

func TestRecordSubmissionStreak(t *testing.T) {
	svc, _ := newTestProgressService(t)
	userID := uuid.New()
	ctx := context.Background()

	current := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	submit := func() *domain.DomainProgress {
		t.Helper()
		p, err := svc.RecordSubmission(ctx, userID, testDomain, intPtr(100), 5)
		if err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
		return p
	}

	if p := submit(); p.Streak != 1 {
		t.Fatalf("initial Streak = %d, want 1", p.Streak)
	}

	// Same day: unchanged.
	current = current.Add(6 * time.Hour)
	if p := submit(); p.Streak != 1 {
		t.Errorf("same-day Streak = %d, want 1", p.Streak)
	}

	// Next day: extends.
	current = current.Add(24 * time.Hour)
	if p := submit(); p.Streak != 2 {
		t.Errorf("next-day Streak = %d, want 2", p.Streak)
	}
	current = current.Add(24 * time.Hour)
	if p := submit(); p.Streak != 3 {
		t.Errorf("third-day Streak = %d, want 3", p.Streak)
	}

	// Gap: resets.
	current = current.Add(72 * time.Hour)
	if p := submit(); p.Streak != 1 {
		t.Errorf("post-gap Streak = %d, want 1", p.Streak)
	}
}

func TestRecordSubmissionSkillsMonotonic(t *testing.T) {
	svc, _ := newTestProgressService(t)
	userID := uuid.New()
	ctx := context.Background()

	var unlocked []string
	for i := 0; i < 16; i++ {
		p, err := svc.RecordSubmission(ctx, userID, testDomain, intPtr(1000), 30)
		if err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
		if len(p.SkillsUnlocked) < len(unlocked) {
			t.Fatalf("skills shrank from %v to %v", unlocked, p.SkillsUnlocked)
		}
		for j, skill := range unlocked {
			if p.SkillsUnlocked[j] != skill {
				t.Fatalf("skill order changed: %v vs %v", unlocked, p.SkillsUnlocked)
			}
		}
		unlocked = p.SkillsUnlocked
	}

	// 16 perfect scores is 8000 XP: the top tier plus its four skills.
	if len(unlocked) != 4 {
		t.Errorf("SkillsUnlocked = %v, want the full four-skill set", unlocked)
	}
}

func TestLevelTitle(t *testing.T) {
	svc, _ := newTestProgressService(t)

	if title := svc.LevelTitle(testDomain, 1); title == "" {
		t.Error("LevelTitle for level 1 is empty")
	}
	if title := svc.LevelTitle("Astrology", 1); title != "" {
		t.Errorf("LevelTitle for unknown domain = %q, want empty", title)
	}
}

func TestMergeSkills(t *testing.T) {
	merged := mergeSkills(nil, nil)
	if merged == nil || len(merged) != 0 {
		t.Errorf("mergeSkills(nil, nil) = %v, want empty non-nil", merged)
	}

	merged = mergeSkills([]string{"a", "b"}, []string{"b", "c"})
	want := []string{"a", "b", "c"}
	if len(merged) != len(want) {
		t.Fatalf("mergeSkills = %v, want %v", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("mergeSkills = %v, want %v", merged, want)
		}
	}
}
