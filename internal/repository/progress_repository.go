package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/caseforge/backend/internal/domain"
)

// progressRepository implements domain.DomainProgressRepository using GORM
type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new domain progress repository
func NewProgressRepository(db *gorm.DB) domain.DomainProgressRepository {
	return &progressRepository{db: db}
}

// FindByUserAndDomain returns the progress row for a pair, or
// domain.ErrProgressNotFound if the pair has never submitted
func (r *progressRepository) FindByUserAndDomain(userID uuid.UUID, domainName string) (*domain.DomainProgress, error) {
	var progress domain.DomainProgress
	result := r.db.Where("user_id = ? AND domain = ?", userID, domainName).First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, result.Error
	}
	return &progress, nil
}

// FindByUserID returns all progress rows for a user across domains
func (r *progressRepository) FindByUserID(userID uuid.UUID) ([]domain.DomainProgress, error) {
	var rows []domain.DomainProgress
	result := r.db.Where("user_id = ?", userID).Order("domain ASC").Find(&rows)
	return rows, result.Error
}

// Mutate applies fn to the (userID, domain) row under a row-level lock and
// persists the result in the same transaction. The row is created first if
// the pair has never submitted; the insert uses ON CONFLICT DO NOTHING on the
// (user_id, domain) unique index so that two concurrent first submissions
// converge on a single row instead of failing or double-creating.
func (r *progressRepository) Mutate(ctx context.Context, userID uuid.UUID, domainName string, fn func(p *domain.DomainProgress) error) (*domain.DomainProgress, error) {
	var out *domain.DomainProgress

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progress domain.DomainProgress

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND domain = ?", userID, domainName).
			First(&progress).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			seed := domain.NewDomainProgress(userID, domainName)
			seed.ID = uuid.New()
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "domain"}},
				DoNothing: true,
			}).Create(seed).Error; err != nil {
				return err
			}
			// Re-read under lock: the row is now either ours or the one a
			// concurrent transaction committed first.
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ? AND domain = ?", userID, domainName).
				First(&progress).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := fn(&progress); err != nil {
			return err
		}

		if err := tx.Save(&progress).Error; err != nil {
			return err
		}
		out = &progress
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindTopByDomain returns up to limit progress rows for a domain ordered by
// experience points descending, ties broken by most recent activity
func (r *progressRepository) FindTopByDomain(domainName string, limit int) ([]domain.DomainProgress, error) {
	var rows []domain.DomainProgress
	result := r.db.
		Where("domain = ?", domainName).
		Order("experience_points DESC, last_activity DESC").
		Limit(limit).
		Find(&rows)
	return rows, result.Error
}

// CountDistinctUsers returns the number of users with any progress row
func (r *progressRepository) CountDistinctUsers() (int64, error) {
	var count int64
	result := r.db.Model(&domain.DomainProgress{}).
		Distinct("user_id").
		Count(&count)
	return count, result.Error
}

// WithContext returns a repository with the given context for tracing
func (r *progressRepository) WithContext(ctx context.Context) domain.DomainProgressRepository {
	return &progressRepository{db: r.db.WithContext(ctx)}
}
