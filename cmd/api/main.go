package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"dealsplit/internal/adapter/api"
	"dealsplit/internal/adapter/api/handler"
	apimiddleware "dealsplit/internal/adapter/api/middleware"
	"dealsplit/internal/adapter/api/router"
	"dealsplit/internal/adapter/repository"
	"dealsplit/internal/infrastructure/firebase"
	"dealsplit/internal/infrastructure/realtime"
	"dealsplit/internal/infrastructure/storage"
	"dealsplit/internal/infrastructure/websocket"
	"dealsplit/internal/usecase"
	"dealsplit/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else if serviceAccountPath != "" {
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	} else {
		log.Fatalf("Set FIREBASE_SERVICE_ACCOUNT_JSON or FIREBASE_SERVICE_ACCOUNT_PATH")
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

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, serviceAccountPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	categoryRepo := repository.NewFirestoreCategoryRepository(firestoreClient)
	requestRepo := repository.NewFirestoreRequestRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	messageFeed := realtime.NewRedisMessageFeed(redisClient)

	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)
	requestUseCase := usecase.NewRequestUseCase(requestRepo, categoryRepo, userRepo)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, requestRepo, messageFeed, wsManager)
	wsManager.OnMarkRead(chatUseCase.MarkRead)
	attachmentUseCase := usecase.NewAttachmentUseCase(chatRepo, storageClient)
	notificationUseCase := usecase.NewNotificationUseCase(chatRepo, userRepo, chatUseCase, messageFeed, wsManager)
	notificationUseCase.Run(ctx)

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	router.Setup(e, router.Handlers{
		Health:       handler.NewHealthHandler(cfg.MapsApiKey),
		User:         handler.NewUserHandler(userUseCase),
		Request:      handler.NewRequestHandler(requestUseCase),
		Chat:         handler.NewChatHandler(chatUseCase),
		Attachment:   handler.NewAttachmentHandler(attachmentUseCase),
		Notification: handler.NewNotificationHandler(notificationUseCase),
		WebSocket:    handler.NewWebSocketHandler(wsManager, authMiddleware),
	}, authMiddleware)

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
