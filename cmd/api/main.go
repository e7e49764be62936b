package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api"
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/handler"
	apimiddleware "github.com/tinashelorenzi/grease-monkey/internal/adapter/api/middleware"
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/router"
	"github.com/tinashelorenzi/grease-monkey/internal/adapter/repository"
	"github.com/tinashelorenzi/grease-monkey/internal/infrastructure/firebase"
	"github.com/tinashelorenzi/grease-monkey/internal/usecase"
	"github.com/tinashelorenzi/grease-monkey/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Try to get service account from environment variable (for production)
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		// Fallback to file path (for local development)
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./grease-monkey-firebase-adminsdk.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	mechanicRepo := repository.NewFirestoreMechanicRepository(firestoreClient)
	requestRepo := repository.NewFirestoreRequestRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	chatUseCase := usecase.NewChatUseCase(chatRepo)
	requestUseCase := usecase.NewRequestUseCase(requestRepo, mechanicRepo, userRepo, chatUseCase)
	matchingUseCase := usecase.NewMatchingUseCase(mechanicRepo, cfg.DefaultSearchRadius)

	handler.Setup(matchingUseCase, requestUseCase, chatUseCase)
	handler.SetupHealthHandler(firebaseAuthClient)
	handler.SetupDevRequestHandler(requestUseCase)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.GeneralRateLimit())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	wsHandler := handler.NewWebSocketHandler(
		requestUseCase,
		chatUseCase,
		authMiddleware,
		time.Duration(cfg.RequestWatchTimeout)*time.Second,
	)

	router.Setup(e, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)
	router.SetupDevRouter(e, cfg.Environment, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
