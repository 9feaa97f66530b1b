package data

import (
	_ "embed"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/caseforge/backend/internal/domain"
)

//go:embed problems.json
var problemsData []byte

// problemJSON represents the JSON structure for seed problems
type problemJSON struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Difficulty       string `json:"difficulty"`
	Category         string `json:"category"`
	Domain           string `json:"domain"`
	Company          string `json:"company"`
	TimeLimitMinutes int    `json:"time_limit_minutes"`
	SampleFramework  string `json:"sample_framework"`
}

// Seeder handles database seeding operations
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a new database seeder
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger,
	}
}

// SeedProblems seeds the problems table with the starter case library.
// Seeding is skipped when any problems already exist.
func (s *Seeder) SeedProblems() error {
	s.logger.Info("Starting to seed problems...")

	var count int64
	if err := s.db.Model(&domain.Problem{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.logger.Info("Problems already seeded, skipping",
			zap.Int64("count", count),
		)
		return nil
	}

	problems, err := GetEmbeddedProblems()
	if err != nil {
		return err
	}

	if err := s.db.CreateInBatches(problems, 50).Error; err != nil {
		return err
	}

	s.logger.Info("Successfully seeded problems",
		zap.Int("count", len(problems)),
	)

	return nil
}

// GetEmbeddedProblems returns the embedded starter case library.
// Useful for testing or direct access
func GetEmbeddedProblems() ([]domain.Problem, error) {
	var problemsJSON []problemJSON
	if err := json.Unmarshal(problemsData, &problemsJSON); err != nil {
		return nil, err
	}

	problems := make([]domain.Problem, len(problemsJSON))
	for i, p := range problemsJSON {
		problems[i] = domain.Problem{
			ID:               uuid.New(),
			Title:            p.Title,
			Description:      p.Description,
			Difficulty:       domain.Difficulty(p.Difficulty),
			Category:         p.Category,
			Domain:           p.Domain,
			Company:          p.Company,
			TimeLimitMinutes: p.TimeLimitMinutes,
			SampleFramework:  p.SampleFramework,
		}
	}

	return problems, nil
}
