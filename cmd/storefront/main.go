package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"car-inventory/internal/auth"
	"car-inventory/internal/cache"
	"car-inventory/internal/config"
	"car-inventory/internal/consumer"
	"car-inventory/internal/db"
	"car-inventory/internal/discovery"
	"car-inventory/internal/handlers"
	"car-inventory/internal/images"
	"car-inventory/internal/messaging"
	"car-inventory/internal/publisher"
)

const (
	serviceName = "storefront"
	serviceID   = "storefront-1"
)

func main() {
	cfg := config.Load()

	// Connect to PostgreSQL
	database, err := db.NewPostgresDB(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPass, cfg.PostgresDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Connect to Redis: one cache for the catalog, one with a longer
	// TTL for image search results
	catalogCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, 5*time.Minute)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer catalogCache.Close()

	imageCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, 15*time.Minute)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer imageCache.Close()

	// Connect to RabbitMQ
	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPass)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	// Create publisher
	orderPublisher, err := publisher.NewOrderPublisher(rabbitMQ)
	if err != nil {
		log.Fatalf("Failed to create publisher: %v", err)
	}

	// Register with Consul
	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Printf("⚠️ Consul unavailable, skipping registration: %v", err)
	} else {
		err = consul.Register(discovery.ServiceConfig{
			Name: serviceName,
			ID:   serviceID,
			Port: cfg.HTTPPort,
			Tags: []string{"api", "storefront"},
		})
		if err != nil {
			log.Fatalf("Failed to register service: %v", err)
		}

		// Deregister on shutdown
		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan
			log.Println("Shutting down...")
			consul.Deregister(serviceID)
			os.Exit(0)
		}()
	}

	// Create repositories
	carRepo := db.NewCarRepository(database)
	cachedCars := db.NewCachedCarRepository(carRepo, catalogCache)
	orderRepo := db.NewOrderRepository(database)

	// External capabilities
	tokens := auth.NewTokenService(cfg.JWTSecret)
	imageProvider := images.NewSearchClient(cfg.ImageAPIKey, cfg.ImageAPIHost, imageCache)

	// Create handlers
	tokenHandler := handlers.NewTokenHandler(tokens)
	shopHandler := handlers.NewShopHandler(cachedCars, imageProvider)
	orderHandler := handlers.NewOrderHandler(orderRepo, orderPublisher)

	// Start the cache-invalidation consumers
	go startOrderConsumers(rabbitMQ, cachedCars)

	// Setup router
	router := gin.Default()

	router.GET("/health", shopHandler.HealthCheck)
	router.GET("/stats", orderHandler.ShopStats)

	api := router.Group("/api")
	api.GET("/token", tokenHandler.Token)
	api.POST("/token", tokenHandler.Token)

	protected := api.Group("", tokens.Middleware())
	protected.GET("/shop", shopHandler.ListCars)
	protected.GET("/shop/:car_id", shopHandler.GetCar)
	protected.POST("/shop", shopHandler.CreateCar)
	protected.PUT("/shop/:car_id", shopHandler.UpdateCar)
	protected.DELETE("/shop/:car_id", shopHandler.DeleteCar)

	protected.GET("/order/:cust_id", orderHandler.GetOrders)
	protected.POST("/order/create/:cust_id", orderHandler.CreateOrder)
	protected.PUT("/order/update/:order_id", orderHandler.UpdateOrder)
	protected.POST("/order/update/:order_id", orderHandler.UpdateOrder)
	protected.DELETE("/order/delete/:order_id", orderHandler.DeleteOrder)

	// Start server
	log.Printf("🚀 %s starting on http://localhost:%d", serviceName, cfg.HTTPPort)
	log.Println("   Publishing order events to RabbitMQ")
	router.Run(fmt.Sprintf(":%d", cfg.HTTPPort))
}

func startOrderConsumers(mq *messaging.RabbitMQ, catalog *db.CachedCarRepository) {
	catalogConsumer := consumer.NewCatalogConsumer(catalog)

	queues := []string{publisher.OrderCreatedQueue, publisher.OrderUpdatedQueue, publisher.OrderDeletedQueue}
	for _, queue := range queues {
		messages, err := mq.Consume(queue)
		if err != nil {
			log.Fatalf("Failed to consume messages: %v", err)
		}
		go catalogConsumer.ProcessOrderEvents(messages)
	}
}
