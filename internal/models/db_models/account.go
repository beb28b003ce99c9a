package db_models

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

type Account struct {
	BaseModel
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"type:varchar(16);not null;default:customer"`
	Verified     bool   `gorm:"not null;default:false"`
}
