package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the credential record of the authentication service. The
// profile it belongs to lives in the document store under ProfileID.
type Account struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"type:text;not null" json:"-"`
	Role          Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	ProfileID     string    `gorm:"type:varchar(128);not null;index" json:"profile_id"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
