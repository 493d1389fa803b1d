package models

import (
	"time"

	"github.com/ichchha07-wish/meal-system/utils"
)

const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
)

// MealTypes lists the accepted values for Meal.Type.
var MealTypes = []string{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack}

// Meal is a quantity of surplus food posted by a provider for pickup
// within a serving window. Latitude/Longitude may be absent; an
// unlocated meal is discoverable by everyone regardless of distance.
type Meal struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Type        string `gorm:"size:20;not null;default:lunch" json:"type"`
	ImageURL    string `json:"image_url,omitempty"`

	Quantity         int `gorm:"not null" json:"quantity"`
	OriginalQuantity int `gorm:"not null" json:"original_quantity"` // snapshot at creation, never updated

	ServingDate time.Time `gorm:"type:date;index:idx_meals_serving" json:"serving_date"`
	ServingTime string    `gorm:"size:8;index:idx_meals_serving" json:"serving_time"` // "HH:MM"

	Location        string   `gorm:"size:300" json:"location"`
	Latitude        *float64 `gorm:"type:decimal(9,6);index" json:"latitude"`
	Longitude       *float64 `gorm:"type:decimal(9,6);index" json:"longitude"`
	ProximityRadius float64  `gorm:"default:5" json:"proximity_radius"` // km

	ProviderID      uint   `gorm:"not null;index" json:"provider_id"`
	Provider        User   `gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE" json:"-"`
	ProviderContact string `gorm:"size:17" json:"provider_contact"`

	IsActive  bool `gorm:"default:true;index:idx_meals_status" json:"is_active"`
	IsExpired bool `gorm:"default:false;index:idx_meals_status" json:"is_expired"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServingDateTime combines the serving date and "HH:MM" time into a
// single timestamp in the server's location.
func (m *Meal) ServingDateTime() (time.Time, error) {
	t, err := time.Parse("15:04", m.ServingTime)
	if err != nil {
		t, err = time.Parse("15:04:05", m.ServingTime)
		if err != nil {
			return time.Time{}, err
		}
	}
	d := m.ServingDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
}

// DistanceFrom returns the great-circle distance in km from the given
// point, or nil when the meal has no coordinates.
func (m *Meal) DistanceFrom(lat, lng float64) *float64 {
	if m.Latitude == nil || m.Longitude == nil {
		return nil
	}
	d := utils.Haversine(*m.Latitude, *m.Longitude, lat, lng)
	return &d
}

// WithinProximity reports whether the given point falls inside the
// meal's proximity radius. Meals without coordinates are visible to
// everyone, so this is unconditionally true for them.
func (m *Meal) WithinProximity(lat, lng float64) bool {
	d := m.DistanceFrom(lat, lng)
	if d == nil {
		return true
	}
	return *d <= m.ProximityRadius
}
