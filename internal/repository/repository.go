package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every repository.
type Repository struct {
	db *gorm.DB

	Account     AccountRepository
	Course      CourseRepository
	Result      ResultRepository
	Publication PublicationRepository
	ActivityLog ActivityLogRepository
}

// NewRepository wires every repository onto db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		Account:     NewAccountRepo(db),
		Course:      NewCourseRepo(db),
		Result:      NewResultRepo(db),
		Publication: NewPublicationRepo(db),
		ActivityLog: NewActivityLogRepo(db),
	}
}

// BeginTx starts a transaction. Callers must Commit or Rollback.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns a Repository whose members all run on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction runs fn against repositories bound to a single transaction.
// The transaction is rolled back when fn returns an error or panics and
// committed otherwise. A Repository assembled without a database (unit tests
// with in-memory repositories) runs fn directly.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
