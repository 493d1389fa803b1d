package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ichchha07-wish/meal-system/models"
	"github.com/ichchha07-wish/meal-system/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const codeAttempts = 10

// Notifier receives claim lifecycle events after they commit. Delivery
// is best-effort; implementations must never fail the claim.
type Notifier interface {
	ClaimCreated(claim *models.MealClaim, meal *models.Meal, otp string)
	CollectionVerified(claim *models.MealClaim, meal *models.Meal)
}

type ClaimService struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	notifier Notifier // may be nil
}

func NewClaimService(db *gorm.DB, log *zap.SugaredLogger, notifier Notifier) *ClaimService {
	return &ClaimService{db: db, log: log, notifier: notifier}
}

// ClaimReceipt is what the beneficiary takes away from a successful
// claim: the claim id plus both forms of the pickup code and enough
// meal detail to find the pickup point.
type ClaimReceipt struct {
	ClaimID          uint      `json:"claim_id"`
	OTP              string    `json:"otp"`
	ConfirmationCode string    `json:"confirmation_code"`
	MealID           uint      `json:"meal_id"`
	MealName         string    `json:"meal_name"`
	MealType         string    `json:"meal_type"`
	Location         string    `json:"location"`
	ServingDate      string    `json:"serving_date"`
	ServingTime      string    `json:"serving_time"`
	QuantityClaimed  int       `json:"quantity_claimed"`
	ProviderName     string    `json:"provider_name"`
	ProviderContact  string    `json:"provider_contact"`
	Status           string    `json:"status"`
	ClaimedAt        time.Time `json:"claimed_at"`
}

// Create reserves quantity on a meal for a beneficiary. The
// availability check, the conditional decrement and the claim insert
// all run in one transaction, so two racing claims on the last serving
// can never both succeed and the meal can never be decremented without
// a claim existing.
func (s *ClaimService) Create(mealID, beneficiaryID uint, quantity int) (*ClaimReceipt, error) {
	if quantity < 1 {
		return nil, &ValidationError{Field: "quantity_claimed", Message: "must be at least 1"}
	}

	var (
		receipt ClaimReceipt
		claim   *models.MealClaim
		meal    models.Meal
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Provider").First(&meal, mealID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "meal"}
			}
			return err
		}

		if expired, err := checkExpired(tx, &meal); err != nil {
			return err
		} else if expired {
			return &ConflictError{Message: "this meal has expired"}
		}
		if !meal.IsActive {
			return &ConflictError{Message: "this meal is no longer available"}
		}
		if meal.Quantity < quantity {
			return &ConflictError{Message: fmt.Sprintf("only %d servings available", meal.Quantity)}
		}

		var open int64
		err := tx.Model(&models.MealClaim{}).
			Where("meal_id = ? AND beneficiary_id = ? AND status IN ?",
				mealID, beneficiaryID, []string{models.ClaimStatusPending, models.ClaimStatusConfirmed}).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return &ConflictError{Message: "you have already claimed this meal"}
		}

		// Conditional decrement closes the oversell race: with the
		// guard in the WHERE clause, a concurrent claim that got there
		// first leaves nothing for this one to decrement.
		res := tx.Model(&models.Meal{}).
			Where("id = ? AND quantity >= ?", mealID, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ConflictError{Message: "this meal is no longer available"}
		}
		if err := tx.Model(&models.Meal{}).
			Where("id = ? AND quantity <= 0", mealID).
			UpdateColumn("is_active", false).Error; err != nil {
			return err
		}

		now := time.Now()
		claim = &models.MealClaim{
			MealID:           mealID,
			BeneficiaryID:    beneficiaryID,
			QuantityClaimed:  quantity,
			Status:           models.ClaimStatusConfirmed, // auto-confirmed, no separate OTP step
			ConfirmationCode: s.generateCode(tx),
			Verified:         true,
			VerifiedAt:       &now,
		}
		if err := tx.Create(claim).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Message: "you have already claimed this meal"}
			}
			return err
		}

		if err := tx.First(&meal, mealID).Error; err != nil {
			return err
		}

		receipt = ClaimReceipt{
			ClaimID:          claim.ID,
			OTP:              utils.ShortOTP(claim.ConfirmationCode),
			ConfirmationCode: claim.ConfirmationCode,
			MealID:           meal.ID,
			MealName:         meal.Name,
			MealType:         meal.Type,
			Location:         meal.Location,
			ServingDate:      meal.ServingDate.Format("2006-01-02"),
			ServingTime:      meal.ServingTime,
			QuantityClaimed:  quantity,
			ProviderName:     meal.Provider.DisplayName(),
			ProviderContact:  meal.ProviderContact,
			Status:           claim.Status,
			ClaimedAt:        claim.ClaimedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("meal claimed",
		"claim_id", claim.ID, "meal_id", mealID, "beneficiary_id", beneficiaryID, "quantity", quantity)
	if s.notifier != nil {
		s.notifier.ClaimCreated(claim, &meal, receipt.OTP)
	}
	return &receipt, nil
}

func (s *ClaimService) generateCode(tx *gorm.DB) string {
	for i := 0; i < codeAttempts; i++ {
		code := utils.RandomConfirmationCode()
		var n int64
		if err := tx.Model(&models.MealClaim{}).Where("confirmation_code = ?", code).Count(&n).Error; err == nil && n == 0 {
			return code
		}
	}
	return utils.FallbackConfirmationCode()
}

// VerifyResult summarizes the closed claim for the provider.
type VerifyResult struct {
	ClaimID     uint      `json:"claim_id"`
	Beneficiary string    `json:"beneficiary"`
	MealName    string    `json:"meal"`
	Quantity    int       `json:"quantity"`
	CollectedAt time.Time `json:"collected_at"`
}

// Verify closes the loop at physical pickup. The submitted code may be
// the full confirmation code, its first 4 characters, or the numeric
// short OTP; tried in that order, first match wins.
func (s *ClaimService) Verify(claimID, actorID uint, submittedCode string) (*VerifyResult, error) {
	code := strings.ToUpper(strings.TrimSpace(submittedCode))
	if code == "" {
		return nil, &ValidationError{Field: "code", Message: "verification code is required"}
	}

	var claim models.MealClaim
	if err := s.db.Preload("Meal").Preload("Beneficiary").First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "claim"}
		}
		return nil, err
	}
	if claim.Meal.ProviderID != actorID {
		return nil, &PermissionError{Message: "you can only verify collections for your own meals"}
	}
	if claim.Status == models.ClaimStatusCollected {
		return nil, &ConflictError{Message: "this meal has already been collected"}
	}
	if claim.Status == models.ClaimStatusCancelled {
		return nil, &ConflictError{Message: "this claim has been cancelled"}
	}

	if !codeMatches(claim.ConfirmationCode, code) {
		return nil, &ValidationError{Field: "code", Message: "invalid code, please check and try again"}
	}

	now := time.Now()
	if err := s.collect(&claim, now); err != nil {
		return nil, err
	}

	s.log.Infow("collection verified", "claim_id", claim.ID, "meal_id", claim.MealID)
	if s.notifier != nil {
		s.notifier.CollectionVerified(&claim, &claim.Meal)
	}
	return &VerifyResult{
		ClaimID:     claim.ID,
		Beneficiary: claim.Beneficiary.DisplayName(),
		MealName:    claim.Meal.Name,
		Quantity:    claim.QuantityClaimed,
		CollectedAt: now,
	}, nil
}

func codeMatches(confirmationCode, submitted string) bool {
	if submitted == confirmationCode {
		return true
	}
	if len(confirmationCode) >= 4 && submitted == confirmationCode[:4] {
		return true
	}
	if otp := utils.DigitOTP(confirmationCode); otp != "" && submitted == otp {
		return true
	}
	return false
}

// MarkCollected is the provider's manual alternative to code
// verification. Calling it on an already-collected claim reports the
// conflict instead of silently succeeding.
func (s *ClaimService) MarkCollected(claimID, actorID uint) (*models.MealClaim, error) {
	var claim models.MealClaim
	if err := s.db.Preload("Meal").First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "claim"}
		}
		return nil, err
	}
	if claim.Meal.ProviderID != actorID {
		return nil, &PermissionError{Message: "you can only mark your own meal claims as collected"}
	}
	if claim.Status == models.ClaimStatusCollected {
		return nil, &ConflictError{Message: "this meal has already been collected"}
	}
	if claim.Status == models.ClaimStatusCancelled {
		return nil, &ConflictError{Message: "this claim has been cancelled"}
	}

	if err := s.collect(&claim, time.Now()); err != nil {
		return nil, err
	}
	return &claim, nil
}

// collect transitions a claim to collected. The status guard is in the
// WHERE clause so two racing callers cannot both win between the read
// above and this write.
func (s *ClaimService) collect(claim *models.MealClaim, now time.Time) error {
	res := s.db.Model(&models.MealClaim{}).
		Where("id = ? AND status NOT IN ?", claim.ID,
			[]string{models.ClaimStatusCollected, models.ClaimStatusCancelled}).
		Updates(map[string]interface{}{
			"status":       models.ClaimStatusCollected,
			"collected_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ConflictError{Message: "this meal has already been collected"}
	}
	claim.Status = models.ClaimStatusCollected
	claim.CollectedAt = &now
	return nil
}

// Cancel is the administrative override: no state-entry guard, valid
// from any status. Claimed quantity is not restocked.
func (s *ClaimService) Cancel(claimID, actorID uint) (*models.MealClaim, error) {
	var claim models.MealClaim
	if err := s.db.Preload("Meal").First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "claim"}
		}
		return nil, err
	}
	if claim.BeneficiaryID != actorID && claim.Meal.ProviderID != actorID {
		return nil, &PermissionError{Message: "you can only cancel your own claims"}
	}

	if err := s.db.Model(&claim).Update("status", models.ClaimStatusCancelled).Error; err != nil {
		return nil, err
	}
	claim.Status = models.ClaimStatusCancelled
	s.log.Infow("claim cancelled", "claim_id", claim.ID, "actor_id", actorID)
	return &claim, nil
}

// Get returns a claim readable by its beneficiary or the meal's
// provider.
func (s *ClaimService) Get(claimID, actorID uint) (*models.MealClaim, error) {
	var claim models.MealClaim
	if err := s.db.Preload("Meal").First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "claim"}
		}
		return nil, err
	}
	if claim.BeneficiaryID != actorID && claim.Meal.ProviderID != actorID {
		return nil, &PermissionError{Message: "you do not have access to this claim"}
	}
	return &claim, nil
}

// ListForUser returns a beneficiary's own claims, or for a provider
// the claims against their meals, newest first.
func (s *ClaimService) ListForUser(userID uint, role string) ([]models.MealClaim, error) {
	var claims []models.MealClaim
	q := s.db.Preload("Meal").Order("claimed_at DESC")
	switch role {
	case models.RoleBeneficiary:
		q = q.Where("beneficiary_id = ?", userID)
	case models.RoleProvider:
		q = q.Joins("JOIN meals ON meals.id = meal_claims.meal_id").
			Where("meals.provider_id = ?", userID)
	default:
		return nil, &PermissionError{Message: "invalid user role"}
	}
	err := q.Find(&claims).Error
	return claims, err
}
