package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainStats aggregates the problem and solution counts for one domain
type DomainStats struct {
	Domain                 string             `json:"domain"`
	TotalProblems          int64              `json:"total_problems"`
	TotalSolutions         int64              `json:"total_solutions"`
	DifficultyDistribution map[Difficulty]int `json:"difficulty_distribution"`
	CategoryDistribution   map[string]int     `json:"category_distribution"`
}

// PlatformStats aggregates global counts across the whole platform
type PlatformStats struct {
	TotalProblems          int64              `json:"total_problems"`
	TotalUsers             int64              `json:"total_users"`
	TotalSolutions         int64              `json:"total_solutions"`
	DifficultyDistribution map[Difficulty]int `json:"difficulty_distribution"`
	DomainDistribution     map[string]int     `json:"domain_distribution"`
}

// LeaderboardEntry is one ranked row of a domain leaderboard.
// Users are ordered by experience points descending; ties break on the most
// recent last_activity.
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username,omitempty"`
	Level            int       `json:"level"`
	ExperiencePoints int       `json:"experience_points"`
	ProblemsSolved   int       `json:"problems_solved"`
	AverageScore     float64   `json:"average_score"`
	LastActivity     time.Time `json:"last_activity"`
}

// Leaderboard is the ranked view for one domain
type Leaderboard struct {
	Domain  string             `json:"domain"`
	Entries []LeaderboardEntry `json:"entries"`
}
