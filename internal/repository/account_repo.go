package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/chibuike2003/palgunn/internal/model"
)

// AccountRepository account data access.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByRegNumber(ctx context.Context, regNumber string) (*model.Account, error)
}

type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepo creates an AccountRepository.
func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("account_id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByRegNumber(ctx context.Context, regNumber string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("reg_number = ?", regNumber).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}
