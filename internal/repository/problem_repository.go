package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseforge/backend/internal/domain"
)

// problemRepository implements domain.ProblemRepository using GORM
type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository creates a new problem repository
func NewProblemRepository(db *gorm.DB) domain.ProblemRepository {
	return &problemRepository{db: db}
}

// Create creates a new problem in the database
func (r *problemRepository) Create(problem *domain.Problem) error {
	return r.db.Create(problem).Error
}

// CreateBatch creates multiple problems in a single transaction
func (r *problemRepository) CreateBatch(problems []domain.Problem) error {
	return r.db.CreateInBatches(problems, 50).Error
}

// FindByID finds a problem by its ID
func (r *problemRepository) FindByID(id uuid.UUID) (*domain.Problem, error) {
	var problem domain.Problem
	result := r.db.Where("id = ?", id).First(&problem)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProblemNotFound
		}
		return nil, result.Error
	}
	return &problem, nil
}

// FindAll returns problems matching the filter, newest first
func (r *problemRepository) FindAll(filter domain.ProblemFilter) ([]domain.Problem, error) {
	var problems []domain.Problem
	query := r.db.Model(&domain.Problem{})

	if filter.Domain != "" {
		query = query.Where("domain = ?", filter.Domain)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Company != "" {
		query = query.Where("company = ?", filter.Company)
	}

	result := query.Order("created_at DESC").Find(&problems)
	return problems, result.Error
}

// Update persists admin edits to a problem. Select("*") forces every column
// into the SET clause: struct-based Updates would otherwise drop zero-value
// fields, silently losing edits that clear an optional field.
func (r *problemRepository) Update(problem *domain.Problem) error {
	result := r.db.Model(&domain.Problem{}).
		Where("id = ?", problem.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(problem)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProblemNotFound
	}
	return nil
}

// Delete removes a problem by its ID
func (r *problemRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&domain.Problem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProblemNotFound
	}
	return nil
}

// Count returns the total number of problems
func (r *problemRepository) Count() (int64, error) {
	var count int64
	result := r.db.Model(&domain.Problem{}).Count(&count)
	return count, result.Error
}

// CountByDomain returns problem counts grouped by domain
func (r *problemRepository) CountByDomain() ([]domain.DomainCount, error) {
	var counts []domain.DomainCount
	result := r.db.Model(&domain.Problem{}).
		Select("domain, count(*) as count").
		Group("domain").
		Scan(&counts)
	return counts, result.Error
}

// CountByDifficulty returns problem counts grouped by difficulty.
// An empty domain aggregates over the whole catalog.
func (r *problemRepository) CountByDifficulty(domainName string) ([]domain.DifficultyCount, error) {
	var counts []domain.DifficultyCount
	query := r.db.Model(&domain.Problem{}).
		Select("difficulty, count(*) as count")
	if domainName != "" {
		query = query.Where("domain = ?", domainName)
	}
	result := query.Group("difficulty").Scan(&counts)
	return counts, result.Error
}

// CountByCategory returns problem counts within a domain grouped by category
func (r *problemRepository) CountByCategory(domainName string) ([]domain.CategoryCount, error) {
	var counts []domain.CategoryCount
	result := r.db.Model(&domain.Problem{}).
		Select("category, count(*) as count").
		Where("domain = ?", domainName).
		Group("category").
		Scan(&counts)
	return counts, result.Error
}

// WithContext returns a repository with the given context for tracing
func (r *problemRepository) WithContext(ctx context.Context) domain.ProblemRepository {
	return &problemRepository{db: r.db.WithContext(ctx)}
}
