package response_models

import "tourbook/internal/models/db_models"

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyEmailResponse struct {
	Message         string `json:"message"`
	AlreadyVerified bool   `json:"already_verified"`
}

type AccountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
	CreatedAt int64  `json:"created_at"`
}

type ProviderResponse struct {
	ID                 string `json:"id"`
	AccountID          string `json:"account_id"`
	Name               string `json:"name"`
	Direction          string `json:"direction,omitempty"`
	Contact            string `json:"contact,omitempty"`
	VerificationStatus string `json:"verification_status"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// LoginResponse omits the provider key entirely for customers.
type LoginResponse struct {
	TokenPairResponse
	User     AccountResponse   `json:"user"`
	Provider *ProviderResponse `json:"provider,omitempty"`
}

func NewAccountResponse(account *db_models.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID.String(),
		Name:      account.Name,
		Email:     account.Email,
		Role:      account.Role,
		Verified:  account.Verified,
		CreatedAt: account.CreatedAt,
	}
}

func NewProviderResponse(provider *db_models.Provider) *ProviderResponse {
	if provider == nil {
		return nil
	}
	return &ProviderResponse{
		ID:                 provider.ID.String(),
		AccountID:          provider.AccountID.String(),
		Name:               provider.Name,
		Direction:          provider.Direction,
		Contact:            provider.Contact,
		VerificationStatus: provider.VerificationStatus,
	}
}
