package controllers

import (
	"net/http"
	"strconv"

	"github.com/ichchha07-wish/meal-system/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MealController struct {
	meals *services.MealService
	log   *zap.SugaredLogger
}

func NewMealController(meals *services.MealService, log *zap.SugaredLogger) *MealController {
	return &MealController{meals: meals, log: log}
}

func (m *MealController) Create(c *gin.Context) {
	var input services.MealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	providerID, _ := principal(c)
	meal, err := m.meals.Create(providerID, input)
	if err != nil {
		fail(c, m.log, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "Meal posted successfully", "data": meal})
}

// List is public: beneficiaries browse without claiming. Query params
// mirror the filters: provider, active=true, meal_type, lat/lng/radius.
func (m *MealController) List(c *gin.Context) {
	var f services.MealFilters
	if p := c.Query("provider"); p != "" {
		id, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid provider id"})
			return
		}
		f.ProviderID = uint(id)
	}
	f.ActiveOnly = c.Query("active") == "true"
	f.MealType = c.Query("meal_type")

	if latStr, lngStr := c.Query("lat"), c.Query("lng"); latStr != "" && lngStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lng, err2 := strconv.ParseFloat(lngStr, 64)
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid coordinates"})
			return
		}
		radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "5"), 64)
		f.Near = &services.NearQuery{Lat: lat, Lng: lng, RadiusKM: radius}
	}

	meals, err := m.meals.List(f)
	if err != nil {
		fail(c, m.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": meals, "count": len(meals)})
}

func (m *MealController) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "lat and lng are required"})
		return
	}
	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "5"), 64)

	nearby, err := m.meals.Nearby(lat, lng, radius)
	if err != nil {
		fail(c, m.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": nearby, "count": len(nearby)})
}

func (m *MealController) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	meal, err := m.meals.Get(id)
	if err != nil {
		fail(c, m.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": meal})
}

func (m *MealController) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	var input services.MealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	actorID, _ := principal(c)
	meal, err := m.meals.Update(id, actorID, input)
	if err != nil {
		fail(c, m.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Meal updated successfully", "data": meal})
}

func (m *MealController) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	actorID, _ := principal(c)
	if err := m.meals.Delete(id, actorID); err != nil {
		fail(c, m.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Meal deleted successfully"})
}

func (m *MealController) Deactivate(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	actorID, _ := principal(c)
	meal, err := m.meals.Deactivate(id, actorID)
	if err != nil {
		fail(c, m.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Meal deactivated successfully", "is_active": meal.IsActive})
}

func (m *MealController) ToggleActive(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	actorID, _ := principal(c)
	meal, err := m.meals.ToggleActive(id, actorID)
	if err != nil {
		fail(c, m.log, err)
		return
	}
	msg := "Meal deactivated"
	if meal.IsActive {
		msg = "Meal activated"
	}
	ok(c, http.StatusOK, gin.H{"message": msg, "is_active": meal.IsActive})
}

type UploadImageInput struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

func (m *MealController) UploadImage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	var input UploadImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input"})
		return
	}
	actorID, _ := principal(c)
	meal, err := m.meals.AttachImage(id, actorID, input.ImageBase64)
	if err != nil {
		fail(c, m.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"url": meal.ImageURL})
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return 0, err
	}
	return uint(id), nil
}
