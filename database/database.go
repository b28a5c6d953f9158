package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"absensi_go/config"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB
var RedisClient *redis.Client

// Connect initializes the document store backend and the Redis cache.
// Either side may be absent: without MySQL the app runs cache-only, without
// Redis the cache degrades to an in-process store.
func Connect() {
	if config.AppConfig.RemoteSyncEnabled {
		connectDatabase()
	} else {
		log.Println("Remote sync disabled - running in offline mode")
	}
	connectRedis()
}

// connectDatabase initializes the MySQL connection backing the document store
func connectDatabase() {
	var err error
	dsn := config.AppConfig.GetDSN()

	var gormLogger logger.Interface
	if config.AppConfig.AppEnv == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	// Retry logic for transient tunnel issues
	var lastErr error
	for attempt := 1; attempt <= 8; attempt++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
		if err == nil {
			break
		}
		DB = nil
		lastErr = err
		log.Printf("Database connect attempt %d failed: %v", attempt, err)
		time.Sleep(time.Duration(attempt*attempt) * 300 * time.Millisecond)
	}
	if DB == nil {
		// Remote unavailability is not fatal: the sync layer falls back to
		// the local cache for every operation.
		log.Printf("Failed to connect to database after retries: %v", lastErr)
		log.Println("Continuing without remote store - data will only persist locally")
		return
	}

	log.Println("Database connected successfully")

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(55 * time.Minute)

	AutoMigrate()
}

// AutoMigrate creates the single documents table backing all collections
func AutoMigrate() {
	if err := DB.AutoMigrate(&Document{}); err != nil {
		log.Fatal("Auto migration failed:", err)
	}
	log.Println("Database migration completed successfully")
}

// connectRedis initializes the Redis cache connection
func connectRedis() {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		log.Printf("Redis connection failed: %v", err)
		log.Println("Continuing without Redis - using in-memory cache store")
		RedisClient = nil
		return
	}

	log.Println("Redis connected successfully")
}

// GetRedisClient returns the Redis client instance (nil when unavailable)
func GetRedisClient() *redis.Client {
	return RedisClient
}

// GetDB returns the database instance (nil when remote sync is disabled)
func GetDB() *gorm.DB {
	return DB
}

// Close closes the database connection
func Close() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Println("Error getting database instance:", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Println("Error closing database connection:", err)
		return
	}
	log.Println("Database connection closed")
}
