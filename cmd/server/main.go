package main

import (
	"log"
	"time"

	"github.com/saravanan10393/prompt-playground/internal/config"
	"github.com/saravanan10393/prompt-playground/internal/database"
	"github.com/saravanan10393/prompt-playground/internal/handlers"
	"github.com/saravanan10393/prompt-playground/internal/llm"
	"github.com/saravanan10393/prompt-playground/internal/middleware"
	"github.com/saravanan10393/prompt-playground/internal/ratelimit"
	"github.com/saravanan10393/prompt-playground/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func buildCounterStore(cfg *config.Config) ratelimit.CounterStore {
	switch cfg.RateLimitBackend {
	case "redis":
		store, err := ratelimit.NewRedisStore(ratelimit.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("failed to create redis rate limit store: %v", err)
		}
		return store
	case "memory":
		return ratelimit.NewMemoryStore()
	default:
		log.Fatalf("unknown rate limit backend: %s (supported: memory, redis)", cfg.RateLimitBackend)
		return nil
	}
}

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	limiter := ratelimit.NewLimiter(buildCounterStore(cfg))
	limiter.Strict = cfg.RateLimitStrict

	llmClient := llm.NewClient(cfg.LLMAPIKey, cfg.LLMAPIURL, cfg.LLMSiteURL, cfg.LLMModelPool)
	if !llmClient.IsAvailable() {
		log.Println("LLM_API_KEY not set, evaluation and playground endpoints will fail")
	}
	retrier := llm.NewRetrier(llmClient)

	userService := services.NewUserService(db)
	gameService := services.NewGameService(db)
	submissionService := services.NewSubmissionService(db)
	evaluationService := services.NewEvaluationService(retrier)
	scenarioGenService := services.NewScenarioGenService(retrier)
	refineService := services.NewRefineService(retrier)

	authHandler := handlers.NewAuthHandler(userService)
	gameHandler := handlers.NewGameHandler(gameService)
	submissionHandler := handlers.NewSubmissionHandler(gameService, userService, evaluationService, submissionService)
	playgroundHandler := handlers.NewPlaygroundHandler(retrier, evaluationService, scenarioGenService, refineService, cfg.ChatMaxDuration)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.LLMSiteURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.TokenAuth(userService))

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("", authHandler.Authenticate)
			auth.GET("/me", authHandler.Me)
			auth.PATCH("/name", authHandler.UpdateName)
		}

		games := api.Group("/games")
		{
			games.GET("", gameHandler.ListGames)
			games.POST("", gameHandler.CreateGame)
			games.GET("/:id", gameHandler.GetGame)
			games.PATCH("/:id", gameHandler.UpdateGame)
			games.DELETE("/:id", gameHandler.DeleteGame)
			games.GET("/:id/check-editable", gameHandler.CheckEditable)
			games.GET("/:id/results", submissionHandler.Results)
			games.GET("/:id/submissions/:token", submissionHandler.UserSubmissions)

			games.POST("/:id/submit",
				middleware.RateLimit(limiter, ratelimit.Config{
					MaxRequests:  20,
					Window:       10 * time.Hour,
					RequireAuth:  true,
					BlockMessage: "Submission rate limit exceeded. Please wait before submitting again.",
				}),
				submissionHandler.Submit)
		}

		playground := api.Group("/playground")
		{
			playground.POST("/chat",
				middleware.RateLimit(limiter, ratelimit.Config{
					MaxRequests:  50,
					Window:       10 * time.Hour,
					RequireAuth:  true,
					BlockMessage: "Chat rate limit exceeded. Please wait before sending more messages.",
				}),
				playgroundHandler.Chat)

			playground.POST("/evaluate",
				middleware.RateLimit(limiter, ratelimit.Config{
					MaxRequests:  50,
					Window:       time.Minute,
					RequireAuth:  true,
					BlockMessage: "Evaluation rate limit exceeded. Please wait before evaluating more prompts.",
				}),
				playgroundHandler.Evaluate)

			playground.POST("/generate-scenario",
				middleware.RateLimit(limiter, ratelimit.Config{
					MaxRequests: 50,
					Window:      time.Minute,
					RequireAuth: true,
				}),
				playgroundHandler.GenerateScenario)

			playground.POST("/refine",
				middleware.RateLimit(limiter, ratelimit.Config{
					MaxRequests: 50,
					Window:      time.Minute,
					RequireAuth: true,
				}),
				playgroundHandler.Refine)

			playground.GET("/strategies", playgroundHandler.Strategies)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
