package repositories_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"tourbook/internal/infra/testutil"
	"tourbook/internal/models/db_models"
	"tourbook/internal/repositories"
)

func TestProviderRepository_OneProfilePerAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	accounts := repositories.NewAccountRepository(db)
	providers := repositories.NewProviderRepository(db)
	ctx := context.Background()

	account := newAccount("guide@tours.com")
	account.Role = db_models.RoleProvider
	require.NoError(t, accounts.Insert(ctx, account))

	first := &db_models.Provider{AccountID: account.ID, Name: "Old Town Walks", VerificationStatus: db_models.ProviderStatusPending}
	require.NoError(t, providers.Create(ctx, first))

	second := &db_models.Provider{AccountID: account.ID, Name: "Duplicate", VerificationStatus: db_models.ProviderStatusPending}
	err := providers.Create(ctx, second)
	require.True(t, errors.Is(err, repositories.ErrDuplicate))

	found, err := providers.FindByAccountID(ctx, account.ID.String())
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "Old Town Walks", found.Name)
	require.Equal(t, db_models.ProviderStatusPending, found.VerificationStatus)
}

func TestProviderRepository_FindMissing(t *testing.T) {
	providers := repositories.NewProviderRepository(testutil.MustOpenTestDB(t))

	found, err := providers.FindByAccountID(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	require.Nil(t, found)
}
