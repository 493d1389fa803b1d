package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ichchha07-wish/meal-system/models"
	"github.com/ichchha07-wish/meal-system/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxMealQuantity = 500

type MealService struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	vision *VisionService // optional food check on uploaded photos
}

func NewMealService(db *gorm.DB, log *zap.SugaredLogger) *MealService {
	return &MealService{db: db, log: log}
}

// WithVision enables the Rekognition food check for AttachImage.
func (s *MealService) WithVision(v *VisionService) *MealService {
	s.vision = v
	return s
}

type MealInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Type            string   `json:"type"`
	Quantity        int      `json:"quantity"`
	ServingDate     string   `json:"serving_date"` // "2006-01-02"
	ServingTime     string   `json:"serving_time"` // "15:04"
	Location        string   `json:"location"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	ProximityRadius float64  `json:"proximity_radius"`
	ProviderContact string   `json:"provider_contact"`
}

type MealFilters struct {
	ProviderID uint
	ActiveOnly bool
	MealType   string
	// Optional proximity filter; when set, results keep the default
	// newest-first ordering but drop meals outside their own radius.
	Near *NearQuery
}

type NearQuery struct {
	Lat, Lng float64
	RadiusKM float64
}

// NearbyMeal pairs a meal with its distance from the query point.
// DistanceKM is nil for meals without coordinates, which are visible
// to everyone.
type NearbyMeal struct {
	Meal       models.Meal `json:"meal"`
	DistanceKM *float64    `json:"distance_km"`
}

func (in *MealInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "meal name is required"}
	}
	validType := false
	for _, t := range models.MealTypes {
		if in.Type == t {
			validType = true
			break
		}
	}
	if !validType {
		return &ValidationError{Field: "type", Message: "must be one of breakfast, lunch, dinner, snack"}
	}
	if in.Quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}
	if in.Quantity > maxMealQuantity {
		return &ValidationError{Field: "quantity", Message: fmt.Sprintf("cannot exceed %d", maxMealQuantity)}
	}
	if strings.TrimSpace(in.Location) == "" {
		return &ValidationError{Field: "location", Message: "pickup address is required"}
	}

	contact := strings.TrimSpace(in.ProviderContact)
	if len(contact) != 10 || strings.Trim(contact, "0123456789") != "" {
		return &ValidationError{Field: "provider_contact", Message: "contact number must be exactly 10 digits"}
	}

	if (in.Latitude == nil) != (in.Longitude == nil) {
		return &ValidationError{Field: "latitude", Message: "latitude and longitude must be provided together"}
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return &ValidationError{Field: "latitude", Message: "must be between -90 and 90"}
		}
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return &ValidationError{Field: "longitude", Message: "must be between -180 and 180"}
		}
	}
	if in.ProximityRadius != 0 && in.ProximityRadius < 0.5 {
		return &ValidationError{Field: "proximity_radius", Message: "must be at least 0.5 km"}
	}
	return nil
}

func (in *MealInput) servingDateTime() (date time.Time, t time.Time, err error) {
	date, err = time.ParseInLocation("2006-01-02", in.ServingDate, time.Local)
	if err != nil {
		return date, t, &ValidationError{Field: "serving_date", Message: "invalid date format, expected YYYY-MM-DD"}
	}
	hm, err := time.Parse("15:04", in.ServingTime)
	if err != nil {
		if hm, err = time.Parse("15:04:05", in.ServingTime); err != nil {
			return date, t, &ValidationError{Field: "serving_time", Message: "invalid time format, expected HH:MM"}
		}
	}
	t = time.Date(date.Year(), date.Month(), date.Day(), hm.Hour(), hm.Minute(), hm.Second(), 0, time.Local)
	return date, t, nil
}

// Create validates the posting and persists it with the quantity
// snapshotted into OriginalQuantity.
func (s *MealService) Create(providerID uint, in MealInput) (*models.Meal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	date, servingAt, err := in.servingDateTime()
	if err != nil {
		return nil, err
	}
	if !servingAt.After(time.Now()) {
		return nil, &ValidationError{Field: "serving_date", Message: "serving date and time must be in the future"}
	}

	radius := in.ProximityRadius
	if radius == 0 {
		radius = 5.0
	}

	meal := &models.Meal{
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Type:             in.Type,
		Quantity:         in.Quantity,
		OriginalQuantity: in.Quantity,
		ServingDate:      date,
		ServingTime:      in.ServingTime,
		Location:         in.Location,
		ProximityRadius:  radius,
		ProviderID:       providerID,
		ProviderContact:  strings.TrimSpace(in.ProviderContact),
		IsActive:         true,
	}
	if in.Latitude != nil && in.Longitude != nil {
		lat := utils.RoundCoord(*in.Latitude)
		lng := utils.RoundCoord(*in.Longitude)
		meal.Latitude = &lat
		meal.Longitude = &lng
	}

	if err := s.db.Create(meal).Error; err != nil {
		return nil, err
	}
	s.log.Infow("meal posted", "meal_id", meal.ID, "provider_id", providerID, "quantity", meal.Quantity)
	return meal, nil
}

// Get loads a meal and lazily applies the expiry check.
func (s *MealService) Get(mealID uint) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.First(&meal, mealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "meal"}
		}
		return nil, err
	}
	if _, err := s.CheckExpired(&meal); err != nil {
		return nil, err
	}
	return &meal, nil
}

// List returns meals narrowed by the given filters, newest-first. With
// a Near filter, meals outside their own proximity radius of the query
// point are dropped and the rest reorder by ascending distance, with
// unlocated meals (always visible) trailing.
func (s *MealService) List(f MealFilters) ([]models.Meal, error) {
	q := s.db.Model(&models.Meal{})
	if f.ProviderID != 0 {
		q = q.Where("provider_id = ?", f.ProviderID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ? AND is_expired = ?", true, false)
	}
	if f.MealType != "" {
		q = q.Where("type = ?", f.MealType)
	}

	var meals []models.Meal
	if err := q.Order("created_at DESC").Find(&meals).Error; err != nil {
		return nil, err
	}

	if f.Near == nil {
		return meals, nil
	}
	visible := make([]models.Meal, 0, len(meals))
	for _, m := range meals {
		if m.WithinProximity(f.Near.Lat, f.Near.Lng) {
			visible = append(visible, m)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		di := visible[i].DistanceFrom(f.Near.Lat, f.Near.Lng)
		dj := visible[j].DistanceFrom(f.Near.Lat, f.Near.Lng)
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})
	return visible, nil
}

// Nearby finds active meals around a point, cheapest filter first: a
// bounding-box SQL prefilter narrows the candidates, exact Haversine
// decides membership, and results sort ascending by distance.
// Unlocated active meals are appended after the located ones with a
// nil distance.
func (s *MealService) Nearby(lat, lng, radiusKM float64) ([]NearbyMeal, error) {
	if lat < -90 || lat > 90 {
		return nil, &ValidationError{Field: "lat", Message: "must be between -90 and 90"}
	}
	if lng < -180 || lng > 180 {
		return nil, &ValidationError{Field: "lng", Message: "must be between -180 and 180"}
	}
	if radiusKM <= 0 {
		radiusKM = 5.0
	}

	box := utils.BoxAround(lat, lng, radiusKM)
	var candidates []models.Meal
	err := s.db.
		Where("is_active = ? AND is_expired = ?", true, false).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	var nearby []NearbyMeal
	for i := range candidates {
		m := &candidates[i]
		if expired, err := s.CheckExpired(m); err != nil {
			return nil, err
		} else if expired {
			continue
		}
		d := m.DistanceFrom(lat, lng)
		if d == nil || *d > radiusKM || *d > m.ProximityRadius {
			continue
		}
		nearby = append(nearby, NearbyMeal{Meal: *m, DistanceKM: d})
	}
	sort.Slice(nearby, func(i, j int) bool {
		return *nearby[i].DistanceKM < *nearby[j].DistanceKM
	})

	// Unlocated meals are discoverable by everyone.
	var unlocated []models.Meal
	err = s.db.
		Where("is_active = ? AND is_expired = ?", true, false).
		Where("latitude IS NULL OR longitude IS NULL").
		Order("created_at DESC").
		Find(&unlocated).Error
	if err != nil {
		return nil, err
	}
	for i := range unlocated {
		m := &unlocated[i]
		if expired, err := s.CheckExpired(m); err != nil {
			return nil, err
		} else if expired {
			continue
		}
		nearby = append(nearby, NearbyMeal{Meal: *m})
	}
	return nearby, nil
}

// CheckExpired flips a meal to expired/inactive once its serving time
// has passed. Idempotent: repeated calls after expiry just report true.
func (s *MealService) CheckExpired(meal *models.Meal) (bool, error) {
	return checkExpired(s.db, meal)
}

func checkExpired(db *gorm.DB, meal *models.Meal) (bool, error) {
	if meal.IsExpired {
		return true, nil
	}
	servingAt, err := meal.ServingDateTime()
	if err != nil {
		// Unparseable serving time: treat as not expired rather than
		// hiding the meal.
		return false, nil
	}
	if !time.Now().After(servingAt) {
		return false, nil
	}
	meal.IsExpired = true
	meal.IsActive = false
	err = db.Model(&models.Meal{}).Where("id = ?", meal.ID).
		Updates(map[string]interface{}{"is_expired": true, "is_active": false}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update lets the provider edit a posting. OriginalQuantity is never
// touched after creation.
func (s *MealService) Update(mealID, actorID uint, in MealInput) (*models.Meal, error) {
	meal, err := s.ownedMeal(mealID, actorID, "you can only update your own meals")
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	date, _, err := in.servingDateTime()
	if err != nil {
		return nil, err
	}

	meal.Name = strings.TrimSpace(in.Name)
	meal.Description = in.Description
	meal.Type = in.Type
	meal.Quantity = in.Quantity
	meal.ServingDate = date
	meal.ServingTime = in.ServingTime
	meal.Location = in.Location
	meal.ProviderContact = strings.TrimSpace(in.ProviderContact)
	if in.ProximityRadius != 0 {
		meal.ProximityRadius = in.ProximityRadius
	}
	if in.Latitude != nil && in.Longitude != nil {
		lat := utils.RoundCoord(*in.Latitude)
		lng := utils.RoundCoord(*in.Longitude)
		meal.Latitude = &lat
		meal.Longitude = &lng
	}
	if meal.Quantity <= 0 {
		meal.IsActive = false
	}

	if err := s.db.Save(meal).Error; err != nil {
		return nil, err
	}
	s.log.Infow("meal updated", "meal_id", meal.ID, "provider_id", actorID)
	return meal, nil
}

// Deactivate takes a meal off the catalog. Provider only.
func (s *MealService) Deactivate(mealID, actorID uint) (*models.Meal, error) {
	meal, err := s.ownedMeal(mealID, actorID, "you can only deactivate your own meals")
	if err != nil {
		return nil, err
	}
	meal.IsActive = false
	if err := s.db.Save(meal).Error; err != nil {
		return nil, err
	}
	s.log.Infow("meal deactivated", "meal_id", meal.ID, "provider_id", actorID)
	return meal, nil
}

// ToggleActive flips availability. A meal with no servings left or
// already expired cannot be reactivated.
func (s *MealService) ToggleActive(mealID, actorID uint) (*models.Meal, error) {
	meal, err := s.ownedMeal(mealID, actorID, "you can only modify your own meals")
	if err != nil {
		return nil, err
	}
	if !meal.IsActive && (meal.Quantity <= 0 || meal.IsExpired) {
		return nil, &ConflictError{Message: "meal has no servings left or has expired"}
	}
	meal.IsActive = !meal.IsActive
	if err := s.db.Save(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

// Delete removes a meal and its claims. Hard delete; the cascade is a
// documented simplification, not a retention policy.
func (s *MealService) Delete(mealID, actorID uint) error {
	meal, err := s.ownedMeal(mealID, actorID, "you can only delete your own meals")
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_id = ?", meal.ID).Delete(&models.MealClaim{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Meal{}, meal.ID).Error; err != nil {
			return err
		}
		s.log.Infow("meal deleted", "meal_id", meal.ID, "provider_id", actorID)
		return nil
	})
}

// AttachImage uploads a base64 meal photo to S3 and stores the URL on
// the meal. When a vision service is wired, the photo must look like
// food.
func (s *MealService) AttachImage(mealID, actorID uint, imageBase64 string) (*models.Meal, error) {
	meal, err := s.ownedMeal(mealID, actorID, "you can only add photos to your own meals")
	if err != nil {
		return nil, err
	}

	if s.vision != nil {
		ok, labels, err := s.vision.LooksLikeFood(imageBase64)
		if err != nil {
			// Vision is best-effort; a Rekognition outage should not
			// block providers from posting photos.
			s.log.Warnw("food check unavailable", "meal_id", mealID, "error", err)
		} else if !ok {
			s.log.Infow("meal photo rejected", "meal_id", mealID, "labels", labels)
			return nil, &ValidationError{Field: "image_base64", Message: "the photo does not appear to show food"}
		}
	}

	url, err := utils.UploadMealImage(imageBase64, meal.ID)
	if err != nil {
		return nil, err
	}
	meal.ImageURL = url
	if err := s.db.Model(meal).Update("image_url", url).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *MealService) ownedMeal(mealID, actorID uint, denyMsg string) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.First(&meal, mealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "meal"}
		}
		return nil, err
	}
	if meal.ProviderID != actorID {
		return nil, &PermissionError{Message: denyMsg}
	}
	return &meal, nil
}
