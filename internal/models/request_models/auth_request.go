package request_models

// `binding` tags are checked by gin when decoding; `validate` tags hold the account
// rules and are enforced by the auth service before any side effect.

type RegisterRequest struct {
	Email        string        `json:"email" binding:"required" validate:"account_email"`
	Name         string        `json:"name" binding:"required" validate:"required,max=100"`
	Password     string        `json:"password" binding:"required" validate:"password_policy"`
	Role         string        `json:"role" validate:"oneof=customer provider"`
	ProviderData *ProviderData `json:"provider_data,omitempty" validate:"required_if=Role provider"`
}

type ProviderData struct {
	Name      string `json:"name" validate:"required"`
	Direction string `json:"direction,omitempty"`
	Contact   string `json:"contact,omitempty" validate:"omitempty,provider_contact"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required" validate:"account_email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required" validate:"account_email"`
	Token       string `json:"token" binding:"required" validate:"required"`
	NewPassword string `json:"new_password" binding:"required" validate:"password_policy"`
}
