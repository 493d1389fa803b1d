package models

import "time"

const (
	RoleBeneficiary = "beneficiary"
	RoleProvider    = "provider"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	FullName    string    `json:"full_name"`
	Role        string    `gorm:"size:20;not null;index" json:"role"` // "beneficiary" | "provider"
	PhoneNumber string    `gorm:"size:15;uniqueIndex" json:"phone_number"`
	Address     string    `gorm:"type:text" json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName prefers the full name, falling back to the email.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
