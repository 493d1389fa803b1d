package models

import "time"

const (
	ClaimStatusPending   = "pending"
	ClaimStatusConfirmed = "confirmed"
	ClaimStatusCancelled = "cancelled"
	ClaimStatusCollected = "collected"
)

// MealClaim is a beneficiary's reservation against a meal's quantity.
// A beneficiary can hold at most one claim per meal, enforced by the
// composite unique index in addition to the service-level check.
type MealClaim struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	MealID        uint `gorm:"not null;uniqueIndex:idx_claims_meal_beneficiary" json:"meal_id"`
	Meal          Meal `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE" json:"-"`
	BeneficiaryID uint `gorm:"not null;uniqueIndex:idx_claims_meal_beneficiary" json:"beneficiary_id"`
	Beneficiary   User `gorm:"foreignKey:BeneficiaryID;constraint:OnDelete:CASCADE" json:"-"`

	QuantityClaimed int    `gorm:"not null;default:1" json:"quantity_claimed"`
	Status          string `gorm:"size:20;not null;default:pending;index" json:"status"`

	// Assigned exactly once, at creation. Either 8 random uppercase
	// alphanumerics or a timestamp-derived fallback; the column must fit
	// "CODE" plus a nanosecond timestamp (23 chars).
	ConfirmationCode string `gorm:"size:24;uniqueIndex" json:"confirmation_code"`

	Verified   bool       `gorm:"default:false" json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	CollectedAt     *time.Time `json:"collected_at,omitempty"`
	CollectionNotes string     `gorm:"type:text" json:"collection_notes,omitempty"`

	ClaimedAt time.Time `gorm:"autoCreateTime;index" json:"claimed_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the claim can no longer change state.
func (c *MealClaim) Terminal() bool {
	return c.Status == ClaimStatusCollected || c.Status == ClaimStatusCancelled
}
