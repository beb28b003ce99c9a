package db_models

import "github.com/google/uuid"

const (
	ProviderStatusPending    = "pending"
	ProviderStatusVerified   = "verified"
	ProviderStatusUnverified = "unverified"
)

// Provider is the business profile owned by an account with role provider.
// AccountID is unique so that at most one profile exists per account.
type Provider struct {
	BaseModel
	AccountID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name               string    `gorm:"not null"`
	Direction          string
	Contact            string
	VerificationStatus string `gorm:"type:varchar(16);not null;default:pending"`
}
