package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"tourbook/internal/models/db_models"
	"tourbook/internal/models/request_models"
	"tourbook/internal/models/response_models"
	"tourbook/internal/repositories"
	mem "tourbook/pkg/memcache"
	"tourbook/pkg/metrics"
	"tourbook/pkg/utils"
)

const resetTokenBytes = 32

type AuthServiceInterface interface {
	Register(ctx context.Context, request request_models.RegisterRequest) (*response_models.MessageResponse, error)
	VerifyEmail(ctx context.Context, token string) (*response_models.VerifyEmailResponse, error)
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*response_models.TokenPairResponse, error)
	Me(ctx context.Context, accountID string) (*response_models.AccountResponse, error)
	ProviderProfile(ctx context.Context, accountID string) (*response_models.ProviderResponse, error)
	ForgotPassword(ctx context.Context, request request_models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error
}

// AuthSettings are fixed at startup.
type AuthSettings struct {
	PublicBaseURL   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	VerificationTTL time.Duration
	ResetTokenTTL   time.Duration
}

type AuthService struct {
	accountRepo  repositories.AccountRepository
	providerRepo repositories.ProviderRepository
	tokens       *utils.TokenIssuer
	mailService  IMailService
	resetTokens  mem.ResetTokenStore
	settings     AuthSettings
	log          *zap.Logger
}

func NewAuthService(
	accountRepo repositories.AccountRepository,
	providerRepo repositories.ProviderRepository,
	tokens *utils.TokenIssuer,
	mailService IMailService,
	resetTokens mem.ResetTokenStore,
	settings AuthSettings,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		accountRepo:  accountRepo,
		providerRepo: providerRepo,
		tokens:       tokens,
		mailService:  mailService,
		resetTokens:  resetTokens,
		settings:     settings,
		log:          log.With(zap.String("module", "auth")),
	}
}

// Register validates the submission and mails a verification link. No account row is
// written here: the pending registration travels inside the signed token and the
// account is created when the link is followed.
func (a *AuthService) Register(ctx context.Context, request request_models.RegisterRequest) (_ *response_models.MessageResponse, err error) {
	defer func() { metrics.RecordAuth("register", err) }()

	request.Email = strings.TrimSpace(request.Email)
	request.Name = strings.TrimSpace(request.Name)
	if request.Role == "" {
		request.Role = db_models.RoleCustomer
	}
	if request.Role != db_models.RoleProvider {
		request.ProviderData = nil
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}

	taken, err := a.accountRepo.EmailTaken(ctx, request.Email)
	if err != nil {
		return nil, dbError(err)
	}
	if taken {
		return nil, utils.ErrEmailAlreadyExists
	}

	passwordHash, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	claims := utils.Claims{
		Purpose:      utils.PurposeVerification,
		Email:        request.Email,
		Name:         request.Name,
		Role:         request.Role,
		PasswordHash: passwordHash,
	}
	if request.ProviderData != nil {
		claims.Provider = &utils.ProviderClaims{
			Name:      strings.TrimSpace(request.ProviderData.Name),
			Direction: strings.TrimSpace(request.ProviderData.Direction),
			Contact:   strings.TrimSpace(request.ProviderData.Contact),
		}
	}

	token, err := a.tokens.Issue(claims, a.settings.VerificationTTL)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	if err := a.mailService.SendVerificationLink(ctx, request.Email, a.verificationLink(token)); err != nil {
		a.log.Warn("verification email not sent", zap.String("email", request.Email), zap.Error(err))
		return nil, err
	}

	a.log.Info("registration pending verification", zap.String("email", request.Email), zap.String("role", request.Role))
	return &response_models.MessageResponse{
		Message: "Registration received. Check your email to verify your account.",
	}, nil
}

// VerifyEmail is idempotent: replaying a valid token reports AlreadyVerified instead of failing,
// and never creates a second provider profile.
func (a *AuthService) VerifyEmail(ctx context.Context, token string) (_ *response_models.VerifyEmailResponse, err error) {
	defer func() { metrics.RecordAuth("verify", err) }()

	claims, err := a.tokens.Verify(token, utils.PurposeVerification)
	if err != nil {
		return nil, err
	}
	if claims.PasswordHash == "" || claims.Name == "" {
		return nil, fmt.Errorf("%w: incomplete registration claims", utils.ErrInvalidToken)
	}

	account, newlyVerified, err := a.activateAccount(ctx, claims)
	if err != nil {
		return nil, err
	}

	if account.Role == db_models.RoleProvider && claims.Provider != nil {
		if err := a.ensureProviderProfile(ctx, account, claims.Provider); err != nil {
			return nil, err
		}
	}

	if !newlyVerified {
		return &response_models.VerifyEmailResponse{
			Message:         "Account already verified",
			AlreadyVerified: true,
		}, nil
	}

	a.log.Info("account verified", zap.String("account_id", account.ID.String()))
	a.sendWelcome(ctx, account)
	return &response_models.VerifyEmailResponse{Message: "Account verified successfully"}, nil
}

// activateAccount returns the account for the token's email and whether this call verified it.
func (a *AuthService) activateAccount(ctx context.Context, claims *utils.Claims) (*db_models.Account, bool, error) {
	account, err := a.accountRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, false, dbError(err)
	}

	if account == nil {
		account = &db_models.Account{
			Name:         claims.Name,
			Email:        claims.Email,
			PasswordHash: claims.PasswordHash,
			Role:         normalizeRole(claims.Role),
			Verified:     true,
		}
		err := a.accountRepo.Insert(ctx, account)
		if err == nil {
			return account, true, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, false, dbError(err)
		}

		// A concurrent verification created the row first, or a deleted account still holds the email.
		account, err = a.accountRepo.FindByEmail(ctx, claims.Email)
		if err != nil {
			return nil, false, dbError(err)
		}
		if account == nil {
			return nil, false, utils.ErrEmailAlreadyExists
		}
	}

	flipped, err := a.accountRepo.MarkVerified(ctx, account.ID.String())
	if err != nil {
		return nil, false, dbError(err)
	}
	account.Verified = true
	return account, flipped, nil
}

func (a *AuthService) ensureProviderProfile(ctx context.Context, account *db_models.Account, data *utils.ProviderClaims) error {
	provider := &db_models.Provider{
		AccountID:          account.ID,
		Name:               data.Name,
		Direction:          data.Direction,
		Contact:            data.Contact,
		VerificationStatus: db_models.ProviderStatusPending,
	}

	err := a.providerRepo.Create(ctx, provider)
	switch {
	case err == nil:
		a.log.Info("provider profile created", zap.String("account_id", account.ID.String()))
		return nil
	case errors.Is(err, repositories.ErrDuplicate):
		return nil
	default:
		return dbError(err)
	}
}

// sendWelcome is best effort; the account is already active.
func (a *AuthService) sendWelcome(ctx context.Context, account *db_models.Account) {
	err := a.mailService.SendMailToNotifyUser(ctx, account.Email,
		"Welcome aboard",
		fmt.Sprintf("Hi %s, your email is verified and your account is ready.", account.Name),
		"", "")
	if err != nil {
		a.log.Warn("welcome email not sent", zap.String("account_id", account.ID.String()), zap.Error(err))
	}
}

// Login checks, in order: the account exists, it is verified, the password matches.
func (a *AuthService) Login(ctx context.Context, request request_models.LoginRequest) (_ *response_models.LoginResponse, err error) {
	defer func() { metrics.RecordAuth("login", err) }()

	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, strings.TrimSpace(request.Email))
	if err != nil {
		return nil, dbError(err)
	}
	if account == nil {
		utils.CompareDummyPassword(request.Password)
		return nil, utils.ErrAccountNotFound
	}
	if !account.Verified {
		return nil, utils.ErrAccountNotVerified
	}
	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	pair, err := a.issueTokenPair(account)
	if err != nil {
		return nil, err
	}

	response := &response_models.LoginResponse{
		TokenPairResponse: *pair,
		User:              response_models.NewAccountResponse(account),
	}

	if account.Role == db_models.RoleProvider {
		provider, err := a.providerRepo.FindByAccountID(ctx, account.ID.String())
		if err != nil {
			return nil, dbError(err)
		}
		response.Provider = response_models.NewProviderResponse(provider)
	}

	a.log.Debug("login succeeded", zap.String("account_id", account.ID.String()), zap.Duration("took", time.Since(startTime)))
	return response, nil
}

// Refresh mints a new pair. The presented refresh token stays valid until it expires;
// there is no revocation list.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (_ *response_models.TokenPairResponse, err error) {
	defer func() { metrics.RecordAuth("refresh", err) }()

	claims, err := a.tokens.Verify(refreshToken, utils.PurposeRefresh)
	if err != nil {
		return nil, err
	}

	account, err := a.accountRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, dbError(err)
	}
	// An email reused by a newer account does not inherit the old account's session.
	if account == nil || account.ID.String() != claims.AccountID() {
		return nil, utils.ErrAccountNotFound
	}

	return a.issueTokenPair(account)
}

func (a *AuthService) Me(ctx context.Context, accountID string) (*response_models.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return nil, dbError(err)
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	response := response_models.NewAccountResponse(account)
	return &response, nil
}

// ProviderProfile returns the profile created when a provider account was verified.
func (a *AuthService) ProviderProfile(ctx context.Context, accountID string) (*response_models.ProviderResponse, error) {
	provider, err := a.providerRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, dbError(err)
	}
	if provider == nil {
		return nil, utils.ErrProviderNotFound
	}
	return response_models.NewProviderResponse(provider), nil
}

// ForgotPassword answers the same way whether or not the email is registered.
func (a *AuthService) ForgotPassword(ctx context.Context, request request_models.ForgotPasswordRequest) error {
	request.Email = strings.TrimSpace(request.Email)
	if err := utils.ValidateStruct(request); err != nil {
		return err
	}

	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return dbError(err)
	}
	if account == nil || !account.Verified {
		a.log.Debug("password reset requested for unknown or unverified email")
		return nil
	}

	token, err := utils.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := a.resetTokens.Set(ctx, token, account.Email, a.settings.ResetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	return a.mailService.SendMailToResetPassword(ctx, account.Email, token)
}

func (a *AuthService) ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) (err error) {
	defer func() { metrics.RecordAuth("reset", err) }()

	request.Email = strings.TrimSpace(request.Email)
	if err := utils.ValidateStruct(request); err != nil {
		return err
	}

	email, err := a.resetTokens.Consume(ctx, request.Token)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if email == "" || email != request.Email {
		return fmt.Errorf("%w: unknown reset token", utils.ErrInvalidToken)
	}

	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return dbError(err)
	}
	if account == nil {
		return fmt.Errorf("%w: account no longer exists", utils.ErrInvalidToken)
	}

	passwordHash, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := a.accountRepo.UpdatePasswordHash(ctx, account.ID.String(), passwordHash); err != nil {
		return dbError(err)
	}

	a.log.Info("password reset", zap.String("account_id", account.ID.String()))
	return nil
}

func (a *AuthService) issueTokenPair(account *db_models.Account) (*response_models.TokenPairResponse, error) {
	base := utils.Claims{
		Email:            account.Email,
		Role:             account.Role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: account.ID.String()},
	}

	access := base
	access.Purpose = utils.PurposeAccess
	accessToken, err := a.tokens.Issue(access, a.settings.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh := base
	refresh.Purpose = utils.PurposeRefresh
	refreshToken, err := a.tokens.Issue(refresh, a.settings.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &response_models.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(a.settings.AccessTokenTTL.Seconds()),
	}, nil
}

func (a *AuthService) verificationLink(token string) string {
	return fmt.Sprintf("%s/auth/verify?token=%s", strings.TrimRight(a.settings.PublicBaseURL, "/"), url.QueryEscape(token))
}

func normalizeRole(role string) string {
	if role == db_models.RoleProvider {
		return db_models.RoleProvider
	}
	return db_models.RoleCustomer
}

func dbError(err error) error {
	return fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
}
