package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ichchha07-wish/meal-system/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory SQLite database per test. The
// named shared-cache DSN keeps GORM's pooled connections on the same
// database while isolating tests from each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mealtest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.MealClaim{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

var userSeq atomic.Int64

func createUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	n := userSeq.Add(1)
	u := &models.User{
		Email:       fmt.Sprintf("user%d@example.com", n),
		Password:    "hashed",
		FullName:    fmt.Sprintf("User %d", n),
		Role:        role,
		PhoneNumber: fmt.Sprintf("%010d", n),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func futureServing() (string, string) {
	at := time.Now().Add(24 * time.Hour)
	return at.Format("2006-01-02"), at.Format("15:04")
}

func validMealInput() MealInput {
	date, hm := futureServing()
	lat, lng := 19.0760, 72.8777 // Mumbai
	return MealInput{
		Name:            "Vegetable Biryani",
		Description:     "Fresh surplus from lunch service",
		Type:            models.MealTypeLunch,
		Quantity:        3,
		ServingDate:     date,
		ServingTime:     hm,
		Location:        "123 Marine Drive, Mumbai",
		Latitude:        &lat,
		Longitude:       &lng,
		ProximityRadius: 5,
		ProviderContact: "9876543210",
	}
}

// postMeal persists a valid meal for the provider, with optional
// tweaks applied to the input first.
func postMeal(t *testing.T, svc *MealService, providerID uint, tweak func(*MealInput)) *models.Meal {
	t.Helper()
	in := validMealInput()
	if tweak != nil {
		tweak(&in)
	}
	meal, err := svc.Create(providerID, in)
	if err != nil {
		t.Fatalf("post meal: %v", err)
	}
	return meal
}

// fakeNotifier records lifecycle events without touching AWS.
type fakeNotifier struct {
	created   []uint
	collected []uint
}

func (f *fakeNotifier) ClaimCreated(claim *models.MealClaim, meal *models.Meal, otp string) {
	f.created = append(f.created, claim.ID)
}

func (f *fakeNotifier) CollectionVerified(claim *models.MealClaim, meal *models.Meal) {
	f.collected = append(f.collected, claim.ID)
}
