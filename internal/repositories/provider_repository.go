package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tourbook/internal/models/db_models"
)

type ProviderRepository interface {
	// Create returns ErrDuplicate when the account already owns a profile.
	Create(ctx context.Context, provider *db_models.Provider) error
	FindByAccountID(ctx context.Context, accountID string) (*db_models.Provider, error)
}

type providerRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Create(ctx context.Context, provider *db_models.Provider) error {
	err := r.db.WithContext(ctx).Create(provider).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: provider for account %s", ErrDuplicate, provider.AccountID)
	}
	return err
}

func (r *providerRepository) FindByAccountID(ctx context.Context, accountID string) (*db_models.Provider, error) {
	var provider db_models.Provider
	err := r.db.WithContext(ctx).First(&provider, "account_id = ?", accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}
