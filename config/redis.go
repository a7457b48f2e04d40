package config

import (
	"Spinduel/services/store"
	"log"
	"os"
)

// Connect_redis opens the shared record store on the configured Redis
func Connect_redis() (*store.Store, error) {
	redisUri := os.Getenv("REDIS_URL")
	if redisUri == "" {
		redisUri = "localhost:6379"
	}
	s, err := store.InitStore(redisUri, 0)
	if err != nil {
		log.Printf("Error connecting to Redis: %v", err)
		return nil, err
	}
	log.Println("Redis connection established")
	return s, nil
}
