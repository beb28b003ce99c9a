package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tourbook/internal/models/db_models"
)

// ErrDuplicate reports that a unique constraint rejected the insert.
var ErrDuplicate = errors.New("repository: duplicate record")

type AccountRepository interface {
	Insert(ctx context.Context, account *db_models.Account) error
	FindById(ctx context.Context, id string) (*db_models.Account, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Account, error)
	// EmailTaken also counts soft-deleted accounts, which still hold the unique email.
	EmailTaken(ctx context.Context, email string) (bool, error)
	// MarkVerified flips verified from false to true and reports whether this call did it.
	MarkVerified(ctx context.Context, id string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (a *accountRepository) Insert(ctx context.Context, account *db_models.Account) error {
	err := a.db.WithContext(ctx).Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: account %s", ErrDuplicate, account.Email)
	}
	return err
}

func (a *accountRepository) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	return a.first(ctx, "id = ?", id)
}

// FindByEmail is an exact, case-sensitive match.
func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	return a.first(ctx, "email = ?", email)
}

func (a *accountRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Unscoped().
		Model(&db_models.Account{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (a *accountRepository) MarkVerified(ctx context.Context, id string) (bool, error) {
	res := a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ? AND verified = ?", id, false).
		Update("verified", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (a *accountRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	res := a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// first returns (nil, nil) when nothing matches.
func (a *accountRepository) first(ctx context.Context, query string, args ...any) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).Where(query, args...).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}
