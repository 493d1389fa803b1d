package main

import (
	"log"
	"os"

	"github.com/ichchha07-wish/meal-system/config"
	"github.com/ichchha07-wish/meal-system/controllers"
	"github.com/ichchha07-wish/meal-system/routes"
	"github.com/ichchha07-wish/meal-system/services"
	"github.com/ichchha07-wish/meal-system/utils"
)

func main() {
	logger, err := config.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db := config.InitDB()
	utils.InitS3()

	hub := services.NewRealtimeHub()
	notifier, err := services.NewNotificationService(db, logger, hub)
	if err != nil {
		logger.Fatalw("notification service init failed", "error", err)
	}

	mealSvc := services.NewMealService(db, logger)
	if vision, err := services.NewVisionService(); err != nil {
		logger.Warnw("vision service unavailable, meal photos will not be checked", "error", err)
	} else {
		mealSvc.WithVision(vision)
	}

	ctrl := routes.Controllers{
		Auth:          controllers.NewAuthController(services.NewUserService(db), logger),
		Meals:         controllers.NewMealController(mealSvc, logger),
		Claims:        controllers.NewClaimController(services.NewClaimService(db, logger, notifier), logger),
		Stats:         controllers.NewStatsController(services.NewStatsService(db), logger),
		Notifications: controllers.NewNotificationController(notifier, logger),
		Realtime:      controllers.NewRealtimeController(hub),
	}

	r := routes.SetupRouter(ctrl)

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	if err := r.Run(addr); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}
