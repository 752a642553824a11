package main

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/fanclash/gatekeeper/adapters/events"
	"github.com/fanclash/gatekeeper/adapters/store"
	"github.com/fanclash/gatekeeper/adapters/tokenizer"
	"github.com/fanclash/gatekeeper/config"
	"github.com/fanclash/gatekeeper/ports"
	"github.com/fanclash/gatekeeper/service"
	"github.com/fanclash/gatekeeper/transport/http"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var (
		challenges ports.ChallengeStore
		accounts   ports.AccountStore
		eventPub   ports.EventPublisher
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		logger := watermill.NewStdLogger(false, false)
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			logger,
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}

		challenges = store.NewRedisChallengeStore(redisClient, cfg.ChallengeTTL)
		accounts = store.NewRedisAccountStore(redisClient)
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		// In-process stores: single-use nonce guarantees do not hold
		// across multiple processes behind a load balancer.
		log.Println("REDIS_URL not set, using in-memory stores (single process only)")
		challenges = store.NewMemoryChallengeStore()
		accounts = store.NewMemoryAccountStore()
		eventPub = events.NopPublisher{}
	}

	resolver := service.NewResolver(cfg.AdminWallets, accounts)

	authService := service.NewAuthService(
		challenges,
		accounts,
		tokenizer.NewJWTTokenizer(cfg.SigningSecret),
		eventPub,
		resolver,
		service.WithChallengeTTL(cfg.ChallengeTTL),
		service.WithSessionTTL(cfg.SessionTTL),
	)

	router := http.SetupRouter(authService)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
