package services

import (
	"errors"
	"testing"
	"time"

	"github.com/ichchha07-wish/meal-system/models"

	"gorm.io/gorm"
)

func TestCreateMealValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)

	badLat := 95.0
	lng := 72.8
	cases := []struct {
		name  string
		tweak func(*MealInput)
		field string
	}{
		{"empty name", func(in *MealInput) { in.Name = "  " }, "name"},
		{"bad type", func(in *MealInput) { in.Type = "brunch" }, "type"},
		{"zero quantity", func(in *MealInput) { in.Quantity = 0 }, "quantity"},
		{"too many servings", func(in *MealInput) { in.Quantity = 501 }, "quantity"},
		{"missing location", func(in *MealInput) { in.Location = "" }, "location"},
		{"short contact", func(in *MealInput) { in.ProviderContact = "12345" }, "provider_contact"},
		{"non-numeric contact", func(in *MealInput) { in.ProviderContact = "98765abcde" }, "provider_contact"},
		{"latitude without longitude", func(in *MealInput) { in.Longitude = nil }, "latitude"},
		{"latitude out of range", func(in *MealInput) { in.Latitude = &badLat; in.Longitude = &lng }, "latitude"},
		{"tiny radius", func(in *MealInput) { in.ProximityRadius = 0.2 }, "proximity_radius"},
		{"bad date", func(in *MealInput) { in.ServingDate = "31-12-2026" }, "serving_date"},
		{"bad time", func(in *MealInput) { in.ServingTime = "7pm" }, "serving_time"},
	}
	for _, tc := range cases {
		in := validMealInput()
		tc.tweak(&in)
		_, err := svc.Create(provider.ID, in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: want ValidationError, got %v", tc.name, err)
		}
		if verr.Field != tc.field {
			t.Fatalf("%s: want field %q, got %q", tc.name, tc.field, verr.Field)
		}
	}
}

func TestCreateMealRejectsPastServing(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)

	in := validMealInput()
	past := time.Now().Add(-2 * time.Hour)
	in.ServingDate = past.Format("2006-01-02")
	in.ServingTime = past.Format("15:04")

	_, err := svc.Create(provider.ID, in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for past serving time, got %v", err)
	}
}

func TestCreateMealSnapshotsOriginalQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)

	meal := postMeal(t, svc, provider.ID, func(in *MealInput) { in.Quantity = 7 })
	if meal.OriginalQuantity != 7 || meal.Quantity != 7 {
		t.Fatalf("want quantity and original both 7, got %d/%d", meal.Quantity, meal.OriginalQuantity)
	}
	if !meal.IsActive {
		t.Fatal("new meal should be active")
	}
	if meal.ProximityRadius != 5 {
		t.Fatalf("want proximity radius 5, got %v", meal.ProximityRadius)
	}
}

func TestUpdateMealNeverTouchesOriginalQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)

	meal := postMeal(t, svc, provider.ID, func(in *MealInput) { in.Quantity = 10 })

	in := validMealInput()
	in.Quantity = 4
	updated, err := svc.Update(meal.ID, provider.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 4 {
		t.Fatalf("want quantity 4, got %d", updated.Quantity)
	}
	if updated.OriginalQuantity != 10 {
		t.Fatalf("original quantity changed on update: got %d", updated.OriginalQuantity)
	}
}

func TestUpdateMealRequiresOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	owner := createUser(t, db, models.RoleProvider)
	other := createUser(t, db, models.RoleProvider)

	meal := postMeal(t, svc, owner.ID, nil)

	_, err := svc.Update(meal.ID, other.ID, validMealInput())
	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("want PermissionError, got %v", err)
	}

	_, err = svc.Update(99999, owner.ID, validMealInput())
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("want NotFoundError for missing meal, got %v", err)
	}
}

// insertPastMeal bypasses Create's future-serving guard to seed a meal
// whose serving time has already passed.
func insertPastMeal(t *testing.T, db *gorm.DB, providerID uint) *models.Meal {
	t.Helper()
	past := time.Now().Add(-3 * time.Hour)
	meal := &models.Meal{
		Name:             "Yesterday's Dal",
		Type:             models.MealTypeDinner,
		Quantity:         2,
		OriginalQuantity: 2,
		ServingDate:      past,
		ServingTime:      past.Format("15:04"),
		Location:         "old kitchen",
		ProximityRadius:  5,
		ProviderID:       providerID,
		ProviderContact:  "9876543210",
		IsActive:         true,
	}
	if err := db.Create(meal).Error; err != nil {
		t.Fatalf("insert past meal: %v", err)
	}
	return meal
}

func TestCheckExpiredIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)
	meal := insertPastMeal(t, db, provider.ID)

	expired, err := svc.CheckExpired(meal)
	if err != nil {
		t.Fatalf("check expired: %v", err)
	}
	if !expired {
		t.Fatal("past meal should expire")
	}
	if meal.IsActive {
		t.Fatal("expired meal should be deactivated")
	}

	var stored models.Meal
	if err := db.First(&stored, meal.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.IsExpired || stored.IsActive {
		t.Fatalf("expiry not persisted: expired=%v active=%v", stored.IsExpired, stored.IsActive)
	}

	again, err := svc.CheckExpired(&stored)
	if err != nil || !again {
		t.Fatalf("second check should report expired: %v %v", again, err)
	}
}

func TestGetAppliesLazyExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)
	meal := insertPastMeal(t, db, provider.ID)

	got, err := svc.Get(meal.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsExpired || got.IsActive {
		t.Fatalf("get should expire stale meal: expired=%v active=%v", got.IsExpired, got.IsActive)
	}
}

func TestListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	p1 := createUser(t, db, models.RoleProvider)
	p2 := createUser(t, db, models.RoleProvider)

	postMeal(t, svc, p1.ID, func(in *MealInput) { in.Name = "Idli"; in.Type = models.MealTypeBreakfast })
	lunch := postMeal(t, svc, p1.ID, func(in *MealInput) { in.Name = "Thali"; in.Type = models.MealTypeLunch })
	postMeal(t, svc, p2.ID, func(in *MealInput) { in.Name = "Soup"; in.Type = models.MealTypeDinner })

	if _, err := svc.Deactivate(lunch.ID, p1.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	all, err := svc.List(MealFilters{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("want 3 meals, got %d", len(all))
	}

	mine, err := svc.List(MealFilters{ProviderID: p1.ID})
	if err != nil {
		t.Fatalf("list by provider: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("want 2 meals for p1, got %d", len(mine))
	}

	active, err := svc.List(MealFilters{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("want 2 active meals, got %d", len(active))
	}
	for _, m := range active {
		if m.Name == "Thali" {
			t.Fatal("deactivated meal leaked into active list")
		}
	}

	dinners, err := svc.List(MealFilters{MealType: models.MealTypeDinner})
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(dinners) != 1 || dinners[0].Name != "Soup" {
		t.Fatalf("type filter wrong: %+v", dinners)
	}
}

func TestListNearOrdersByDistance(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)

	// Posted first (oldest) but closest to the query point.
	postMeal(t, svc, provider.ID, func(in *MealInput) {
		in.Name = "Closer"
	})
	bandraLat, bandraLng := 19.0596, 72.8295
	postMeal(t, svc, provider.ID, func(in *MealInput) {
		in.Name = "Farther"
		in.Latitude = &bandraLat
		in.Longitude = &bandraLng
		in.ProximityRadius = 30
	})
	postMeal(t, svc, provider.ID, func(in *MealInput) {
		in.Name = "Unlocated"
		in.Latitude = nil
		in.Longitude = nil
	})

	got, err := svc.List(MealFilters{Near: &NearQuery{Lat: 19.0760, Lng: 72.8777, RadiusKM: 25}})
	if err != nil {
		t.Fatalf("list near: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 meals, got %d", len(got))
	}
	if got[0].Name != "Closer" || got[1].Name != "Farther" || got[2].Name != "Unlocated" {
		t.Fatalf("want distance-ascending with unlocated last, got %q, %q, %q",
			got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestNearbySortsByDistanceAndAppendsUnlocated(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)

	// Bandra is roughly 5 km from the Marine Drive query point, Pune
	// well over 100 km away.
	postMeal(t, svc, provider.ID, func(in *MealInput) {
		in.Name = "Marine Drive Meal"
	})
	bandraLat, bandraLng := 19.0596, 72.8295
	postMeal(t, svc, provider.ID, func(in *MealInput) {
		in.Name = "Bandra Meal"
		in.Latitude = &bandraLat
		in.Longitude = &bandraLng
		in.ProximityRadius = 30
	})
	puneLat, puneLng := 18.5204, 73.8567
	postMeal(t, svc, provider.ID, func(in *MealInput) {
		in.Name = "Pune Meal"
		in.Latitude = &puneLat
		in.Longitude = &puneLng
	})
	postMeal(t, svc, provider.ID, func(in *MealInput) {
		in.Name = "Unlocated Meal"
		in.Latitude = nil
		in.Longitude = nil
	})

	results, err := svc.Nearby(19.0760, 72.8777, 25)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d: %+v", len(results), results)
	}
	if results[0].Meal.Name != "Marine Drive Meal" {
		t.Fatalf("closest first, got %q", results[0].Meal.Name)
	}
	if results[0].DistanceKM == nil || *results[0].DistanceKM > 1 {
		t.Fatalf("query point meal should be ~0 km away, got %v", results[0].DistanceKM)
	}
	if results[1].Meal.Name != "Bandra Meal" {
		t.Fatalf("second should be Bandra, got %q", results[1].Meal.Name)
	}
	if results[2].Meal.Name != "Unlocated Meal" || results[2].DistanceKM != nil {
		t.Fatalf("unlocated meal should trail with nil distance: %+v", results[2])
	}
	for _, r := range results {
		if r.Meal.Name == "Pune Meal" {
			t.Fatal("meal outside the radius leaked into results")
		}
	}
}

func TestNearbyHonoursMealRadius(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)

	// The meal sits ~5 km away but only wants beneficiaries within 2 km.
	bandraLat, bandraLng := 19.0596, 72.8295
	postMeal(t, svc, provider.ID, func(in *MealInput) {
		in.Latitude = &bandraLat
		in.Longitude = &bandraLng
		in.ProximityRadius = 2
	})

	results, err := svc.Nearby(19.0760, 72.8777, 25)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("meal beyond its own radius should be hidden, got %d results", len(results))
	}
}

func TestNearbyValidatesCoordinates(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())

	if _, err := svc.Nearby(91, 0, 5); err == nil {
		t.Fatal("want error for latitude out of range")
	}
	if _, err := svc.Nearby(0, 181, 5); err == nil {
		t.Fatal("want error for longitude out of range")
	}
}

func TestToggleActiveBlocksEmptyMeal(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db, newTestLogger())
	provider := createUser(t, db, models.RoleProvider)

	meal := postMeal(t, svc, provider.ID, nil)
	if err := db.Model(meal).Updates(map[string]interface{}{"quantity": 0, "is_active": false}).Error; err != nil {
		t.Fatalf("drain meal: %v", err)
	}

	_, err := svc.ToggleActive(meal.ID, provider.ID)
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConflictError reactivating empty meal, got %v", err)
	}
}

func TestDeleteCascadesClaims(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger()
	meals := NewMealService(db, log)
	claims := NewClaimService(db, log, nil)
	provider := createUser(t, db, models.RoleProvider)
	beneficiary := createUser(t, db, models.RoleBeneficiary)

	meal := postMeal(t, meals, provider.ID, nil)
	if _, err := claims.Create(meal.ID, beneficiary.ID, 1); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := meals.Delete(meal.ID, provider.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var nMeals, nClaims int64
	db.Model(&models.Meal{}).Where("id = ?", meal.ID).Count(&nMeals)
	db.Model(&models.MealClaim{}).Where("meal_id = ?", meal.ID).Count(&nClaims)
	if nMeals != 0 || nClaims != 0 {
		t.Fatalf("delete left rows behind: meals=%d claims=%d", nMeals, nClaims)
	}
}
