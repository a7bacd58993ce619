package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/openresto/restaurant-orders/config"
	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/queue"
	"github.com/openresto/restaurant-orders/realtime"
	"github.com/openresto/restaurant-orders/router"
	"github.com/openresto/restaurant-orders/services"
	"github.com/openresto/restaurant-orders/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()
	utils.InitJWT()

	cfg := config.Load()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// The hub resolves order access keys through the order service, and the
	// service emits its events through the hub; wire the key lookup lazily
	// to break the construction cycle.
	var orderSvc *services.OrderService
	hub := realtime.NewHub(func(orderID uint) (string, error) {
		return orderSvc.AccessKey(orderID)
	})
	orderSvc = services.NewOrderService(db, hub)

	publisher, err := queue.NewPublisher(cfg.AMQPURL, cfg.OrderQueue)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := queue.NewConsumer(cfg.AMQPURL, cfg.OrderQueue, orderSvc, hub)
	go consumer.Start(ctx)

	r := router.SetupRouter(db, orderSvc, hub, publisher)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Floor{},
		&models.Table{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
