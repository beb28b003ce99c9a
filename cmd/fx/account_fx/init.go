package account_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tourbook/internal/config"
	"tourbook/internal/repositories"
	"tourbook/internal/services"
	mem "tourbook/pkg/memcache"
	"tourbook/pkg/utils"
)

var Module = fx.Provide(
	provideAuthService, provideAccountRepo, provideProviderRepo, provideTokenIssuer)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideProviderRepo(db *gorm.DB) repositories.ProviderRepository {
	return repositories.NewProviderRepository(db)
}

func provideTokenIssuer(cfg *config.Config) (*utils.TokenIssuer, error) {
	return utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer)
}

func provideAuthService(
	accountRepo repositories.AccountRepository,
	providerRepo repositories.ProviderRepository,
	tokens *utils.TokenIssuer,
	mailService services.IMailService,
	resetTokens mem.ResetTokenStore,
	cfg *config.Config,
	log *zap.Logger) services.AuthServiceInterface {

	return services.NewAuthService(accountRepo, providerRepo, tokens, mailService, resetTokens,
		services.AuthSettings{
			PublicBaseURL:   cfg.PublicBaseURL,
			AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
			RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
			VerificationTTL: cfg.JWT.VerificationTTL,
			ResetTokenTTL:   cfg.ResetTokenTTL,
		}, log)
}
