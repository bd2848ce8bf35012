package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"quiz-assessment/internal/assessment"
	"quiz-assessment/internal/auth"
	"quiz-assessment/internal/models"
	"quiz-assessment/pkg/cache"
	"quiz-assessment/pkg/database"
	"quiz-assessment/pkg/liveboard"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize database
	dbConfig := &database.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
	}

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.Result{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(os.Getenv("REDIS_ADDR"))

	// Initialize the live result feed
	feed := liveboard.NewHub()
	go feed.Run()

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	assessmentRepo := assessment.NewRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	authService := auth.NewService(authRepo, jwtSecret)
	assessmentService := assessment.NewService(assessmentRepo, redisCache, feed)

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	assessmentHandler := assessment.NewHandler(assessmentService)

	// Setup router
	router := mux.NewRouter()

	// CORS middleware configuration
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Auth routes - no JWT required
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Public catalog routes
	router.HandleFunc("/api/categories", assessmentHandler.ListCategories).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/quizzes", assessmentHandler.ListQuizzes).Methods("GET", "OPTIONS")

	// Assessment routes - JWT required
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.JWTMiddleware(jwtSecret))

	apiRouter.HandleFunc("/quiz", assessmentHandler.CreateQuiz).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quiz/{id}", assessmentHandler.GetQuizDetail).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/quiz/{id}", assessmentHandler.UpdateQuiz).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/quiz/{id}/attempt", assessmentHandler.StartAttempt).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quiz/{id}/submit", assessmentHandler.SubmitAttempt).Methods("POST", "OPTIONS")

	// WebSocket result feed
	router.HandleFunc("/ws/results", feed.HandleWebSocket)

	// Seed the process-wide randomness used for question selection
	rand.Seed(time.Now().UnixNano())

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}
