package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"studyquiz-service/internal/assessment"
	"studyquiz-service/internal/db"
	"studyquiz-service/internal/event"
	"studyquiz-service/internal/handlers"
	"studyquiz-service/internal/pool"
	"studyquiz-service/internal/repository"
	"studyquiz-service/internal/service"
	"studyquiz-service/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	// Mongo holds the curated pool and the result archive. The service can
	// run without it on the built-in bank alone.
	var (
		questionRepo *repository.QuestionRepository
		resultRepo   *repository.ResultRepository
	)
	if mongoURI := os.Getenv("MONGO_URI"); mongoURI != "" {
		client, err := db.Connect(mongoURI)
		if err != nil {
			log.Printf("MongoDB unavailable, running on the built-in bank: %v", err)
		} else {
			database := client.Database("studyquiz")
			questionRepo = repository.NewQuestionRepository(database)
			resultRepo = repository.NewResultRepository(database)
		}
	} else {
		log.Println("MONGO_URI not set, running on the built-in bank")
	}

	// Redis is the session/cache store; without it everything lives in
	// process memory and is lost on restart.
	var store storage.Store
	if redisURI := os.Getenv("REDIS_URI"); redisURI != "" {
		redisStore, err := storage.NewRedisStore(redisURI)
		if err != nil {
			log.Printf("Redis unavailable, falling back to in-memory store: %v", err)
			store = storage.NewMemoryStore()
		} else {
			defer redisStore.Close()
			store = redisStore
		}
	} else {
		log.Println("REDIS_URI not set, using in-memory store")
		store = storage.NewMemoryStore()
	}

	// RabbitMQ event publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher *event.Publisher
	if rabbitURL != "" && eventExchange != "" {
		var err error
		publisher, err = event.NewPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, events will not be published")
	}

	// Question pool: built-in bank first, curated Mongo pool on top.
	provider := pool.NewProvider()
	seeded, bankSkipped := pool.SeedDefaultBank(provider)
	log.Printf("Built-in bank seeded: %d questions (%d skipped)", seeded, bankSkipped)

	questionService := service.NewQuestionService(questionRepo, store, provider)
	if loaded, skipped, err := questionService.LoadCuratedPool(context.Background()); err != nil {
		log.Printf("Curated pool load failed, continuing with the bank: %v", err)
	} else if loaded > 0 {
		log.Printf("Curated pool loaded: %d questions (%d skipped)", loaded, skipped)
	}

	sessionService := service.NewSessionService(store, resultRepo, publisher)
	orchestrator := assessment.NewOrchestrator(provider, nil)
	assessmentService := service.NewAssessmentService(orchestrator, store, sessionService, publisher)

	sessionHandler := handlers.NewSessionHandler(sessionService, questionService)
	questionHandler := handlers.NewQuestionHandler(questionService, questionRepo)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService)
	resultHandler := handlers.NewResultHandler(resultRepo)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	publicPool := r.Group("/public/quiz/pool")
	{
		publicPool.GET("/fields", questionHandler.PoolFields)
		publicPool.GET("/sample", questionHandler.SamplePool)
	}

	publicSession := r.Group("/public/quiz/session")
	{
		publicSession.GET("/:id", sessionHandler.GetSession)
		publicSession.GET("/:id/score", sessionHandler.SessionScore)
	}

	protected := r.Group("/protected/quiz", requireUserID())
	{
		protected.POST("/session", sessionHandler.StartSession)
		protected.GET("/session/active", sessionHandler.ActiveSession)
		protected.POST("/session/:id/answer", sessionHandler.SelectAnswer)
		protected.POST("/session/:id/next", sessionHandler.NextQuestion)
		protected.POST("/session/:id/previous", sessionHandler.PreviousQuestion)
		protected.POST("/session/:id/finish", sessionHandler.FinishSession)
		protected.POST("/session/:id/abandon", sessionHandler.AbandonSession)
		protected.POST("/session/:id/review", sessionHandler.ReviewSession)
		protected.GET("/stats", sessionHandler.UserStats)
		protected.GET("/results", resultHandler.UserResults)

		protected.POST("/assessment", assessmentHandler.StartAssessment)
		protected.POST("/assessment/evaluate", assessmentHandler.EvaluateAssessment)
		protected.GET("/assessment/result", assessmentHandler.AssessmentResult)

		protected.POST("/questions/ai", questionHandler.SaveAIBatch)
		protected.GET("/questions/ai", questionHandler.GetAIBatch)
		protected.POST("/library", questionHandler.SaveLibraryTest)
		protected.GET("/library", questionHandler.ListLibraryTests)
		protected.DELETE("/library/:name", questionHandler.DeleteLibraryTest)

		protected.POST("/questions", questionHandler.CreateCuratedQuestion)
		protected.DELETE("/questions/:id", questionHandler.DeleteCuratedQuestion)
		protected.POST("/pool/reload", questionHandler.ReloadPool)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "6660"
	}
	r.Run(":" + port)
}

// requireUserID rejects protected requests without the X-User-ID header
// set by the gateway's auth middleware.
func requireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
