package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DomainProgress is the per-(user, domain) progression aggregate. It is owned
// by the progress tracker and mutated only through the submission-triggered
// update path; rows are created lazily on first submission and never deleted.
//
// Invariants: experience_points, problems_solved and time_spent_minutes are
// monotonically non-decreasing; average_score is the arithmetic mean of all
// scores submitted for the pair to date (absent scores count as 0); level is
// always the highest level whose XP requirement is covered by
// experience_points.
type DomainProgress struct {
	ID               uuid.UUID      `json:"-" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_domain"`
	Domain           string         `json:"domain" gorm:"not null;uniqueIndex:idx_user_domain;index"`
	Level            int            `json:"level" gorm:"not null;default:1"`
	ExperiencePoints int            `json:"experience_points" gorm:"not null;default:0"`
	ProblemsSolved   int            `json:"problems_solved" gorm:"not null;default:0"`
	AverageScore     float64        `json:"average_score" gorm:"not null;default:0"`
	TimeSpentMinutes int            `json:"time_spent" gorm:"not null;default:0"`
	Streak           int            `json:"streak" gorm:"not null;default:0"`
	LastActivity     time.Time      `json:"last_activity"`
	SkillsUnlocked   pq.StringArray `json:"skills_unlocked" gorm:"type:text[]"`
	CreatedAt        time.Time      `json:"-"`
	UpdatedAt        time.Time      `json:"-"`
}

// TableName specifies the table name for GORM
func (DomainProgress) TableName() string {
	return "domain_progress"
}

// NewDomainProgress returns the zero-state aggregate for a pair that has not
// submitted anything yet. Read paths materialize this without persisting it.
func NewDomainProgress(userID uuid.UUID, domainName string) *DomainProgress {
	return &DomainProgress{
		UserID:         userID,
		Domain:         domainName,
		Level:          1,
		SkillsUnlocked: pq.StringArray{},
	}
}

// DomainProgressRepository defines the interface for progress data access.
//
// Mutate is the only write path. Implementations must serialize concurrent
// calls for the same (user, domain) pair: the row is loaded (or created)
// under a row-level lock, fn is applied, and the result is persisted within
// the same transaction. A two-step read-then-write is not acceptable here
// because concurrent submissions would lose updates.
type DomainProgressRepository interface {
	FindByUserAndDomain(userID uuid.UUID, domain string) (*DomainProgress, error)
	FindByUserID(userID uuid.UUID) ([]DomainProgress, error)
	Mutate(ctx context.Context, userID uuid.UUID, domain string, fn func(p *DomainProgress) error) (*DomainProgress, error)
	FindTopByDomain(domain string, limit int) ([]DomainProgress, error)
	CountDistinctUsers() (int64, error)
}

// DomainProgressResponse represents progress in API responses
type DomainProgressResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	Domain           string    `json:"domain"`
	Level            int       `json:"level"`
	LevelTitle       string    `json:"level_title,omitempty"`
	ExperiencePoints int       `json:"experience_points"`
	ProblemsSolved   int       `json:"problems_solved"`
	AverageScore     float64   `json:"average_score"`
	TimeSpentMinutes int       `json:"time_spent"`
	Streak           int       `json:"streak"`
	LastActivity     time.Time `json:"last_activity"`
	SkillsUnlocked   []string  `json:"skills_unlocked"`
}

// ToResponse converts a DomainProgress to its API representation
func (p *DomainProgress) ToResponse() DomainProgressResponse {
	skills := p.SkillsUnlocked
	if skills == nil {
		skills = pq.StringArray{}
	}
	return DomainProgressResponse{
		UserID:           p.UserID,
		Domain:           p.Domain,
		Level:            p.Level,
		ExperiencePoints: p.ExperiencePoints,
		ProblemsSolved:   p.ProblemsSolved,
		AverageScore:     p.AverageScore,
		TimeSpentMinutes: p.TimeSpentMinutes,
		Streak:           p.Streak,
		LastActivity:     p.LastActivity,
		SkillsUnlocked:   skills,
	}
}
