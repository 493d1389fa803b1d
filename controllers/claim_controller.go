package controllers

import (
	"net/http"

	"github.com/ichchha07-wish/meal-system/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClaimController struct {
	claims *services.ClaimService
	log    *zap.SugaredLogger
}

func NewClaimController(claims *services.ClaimService, log *zap.SugaredLogger) *ClaimController {
	return &ClaimController{claims: claims, log: log}
}

type CreateClaimInput struct {
	MealID          uint `json:"meal_id" binding:"required"`
	QuantityClaimed int  `json:"quantity_claimed"`
}

func (cc *ClaimController) Create(c *gin.Context) {
	var input CreateClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if input.QuantityClaimed == 0 {
		input.QuantityClaimed = 1
	}

	beneficiaryID, _ := principal(c)
	receipt, err := cc.claims.Create(input.MealID, beneficiaryID, input.QuantityClaimed)
	if err != nil {
		fail(c, cc.log, err)
		return
	}
	body := gin.H{"message": "Meal claimed successfully! Save your Claim ID and OTP."}
	body["data"] = receipt
	ok(c, http.StatusCreated, body)
}

func (cc *ClaimController) List(c *gin.Context) {
	userID, role := principal(c)
	claims, err := cc.claims.ListForUser(userID, role)
	if err != nil {
		fail(c, cc.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": claims, "count": len(claims)})
}

func (cc *ClaimController) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	userID, _ := principal(c)
	claim, err := cc.claims.Get(id, userID)
	if err != nil {
		fail(c, cc.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": claim})
}

type VerifyCollectionInput struct {
	ClaimID uint   `json:"claim_id" binding:"required"`
	OTP     string `json:"otp"`
	Code    string `json:"code"`
}

// VerifyCollection accepts either the short OTP or the full code under
// either key, matching what the beneficiary was shown.
func (cc *ClaimController) VerifyCollection(c *gin.Context) {
	var input VerifyCollectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	code := input.OTP
	if code == "" {
		code = input.Code
	}

	providerID, _ := principal(c)
	result, err := cc.claims.Verify(input.ClaimID, providerID, code)
	if err != nil {
		fail(c, cc.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"message":      "Collection verified successfully",
		"claim_id":     result.ClaimID,
		"beneficiary":  result.Beneficiary,
		"meal":         result.MealName,
		"quantity":     result.Quantity,
		"collected_at": result.CollectedAt,
	})
}

func (cc *ClaimController) MarkCollected(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	providerID, _ := principal(c)
	claim, err := cc.claims.MarkCollected(id, providerID)
	if err != nil {
		fail(c, cc.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"message":      "Claim marked as collected",
		"claim_id":     claim.ID,
		"collected_at": claim.CollectedAt,
	})
}

func (cc *ClaimController) Cancel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	actorID, _ := principal(c)
	claim, err := cc.claims.Cancel(id, actorID)
	if err != nil {
		fail(c, cc.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Claim cancelled", "claim_id": claim.ID, "status": claim.Status})
}
