package services

import (
	"database/sql"

	"github.com/ichchha07-wish/meal-system/models"

	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type ProviderStats struct {
	TotalMeals      int64 `json:"total_meals"`
	ActiveMeals     int64 `json:"active_meals"`
	TotalClaims     int64 `json:"total_claims"`
	CollectedClaims int64 `json:"collected_claims"`
	TotalServings   int64 `json:"total_servings"`
}

type BeneficiaryStats struct {
	AvailableMeals  int64 `json:"available_meals"`
	MyClaims        int64 `json:"my_claims"`
	ConfirmedClaims int64 `json:"confirmed_claims"`
	CollectedClaims int64 `json:"collected_claims"`
	TotalServings   int64 `json:"total_servings"`
}

func (s *StatsService) ForProvider(providerID uint) (*ProviderStats, error) {
	var st ProviderStats
	meals := s.db.Model(&models.Meal{}).Where("provider_id = ?", providerID)
	if err := meals.Count(&st.TotalMeals).Error; err != nil {
		return nil, err
	}
	err := s.db.Model(&models.Meal{}).
		Where("provider_id = ? AND is_active = ?", providerID, true).
		Count(&st.ActiveMeals).Error
	if err != nil {
		return nil, err
	}

	claims := func(status string) *gorm.DB {
		return s.db.Model(&models.MealClaim{}).
			Joins("JOIN meals ON meals.id = meal_claims.meal_id").
			Where("meals.provider_id = ? AND meal_claims.status = ?", providerID, status)
	}
	if err := claims(models.ClaimStatusConfirmed).Count(&st.TotalClaims).Error; err != nil {
		return nil, err
	}
	if err := claims(models.ClaimStatusCollected).Count(&st.CollectedClaims).Error; err != nil {
		return nil, err
	}

	var servings sql.NullInt64
	err = s.db.Model(&models.Meal{}).
		Where("provider_id = ?", providerID).
		Select("SUM(original_quantity)").Scan(&servings).Error
	if err != nil {
		return nil, err
	}
	if servings.Valid {
		st.TotalServings = servings.Int64
	}
	return &st, nil
}

func (s *StatsService) ForBeneficiary(userID uint) (*BeneficiaryStats, error) {
	var st BeneficiaryStats
	err := s.db.Model(&models.Meal{}).
		Where("is_active = ? AND is_expired = ?", true, false).
		Count(&st.AvailableMeals).Error
	if err != nil {
		return nil, err
	}

	mine := func() *gorm.DB {
		return s.db.Model(&models.MealClaim{}).Where("beneficiary_id = ?", userID)
	}
	if err := mine().Count(&st.MyClaims).Error; err != nil {
		return nil, err
	}
	if err := mine().Where("status = ?", models.ClaimStatusConfirmed).Count(&st.ConfirmedClaims).Error; err != nil {
		return nil, err
	}
	if err := mine().Where("status = ?", models.ClaimStatusCollected).Count(&st.CollectedClaims).Error; err != nil {
		return nil, err
	}

	var servings sql.NullInt64
	err = mine().Select("SUM(quantity_claimed)").Scan(&servings).Error
	if err != nil {
		return nil, err
	}
	if servings.Valid {
		st.TotalServings = servings.Int64
	}
	return &st, nil
}
