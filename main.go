package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/cache"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/notify"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	serviceName := getEnv("SERVICE_NAME", "messaging-service")
	environment := getEnv("ENVIRONMENT", "development")

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), getEnv("OTLP_ENDPOINT", ""), serviceName, environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "messaging.events"))
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))

	audit := telemetry.NewAuditEmitter(publisher, getEnv("AUDIT_ROUTING_KEY", "audit.messaging"), serviceName, environment)

	unreadCache := cache.NewUnreadCache(getEnv("REDIS_ADDR", ""))

	convRepo := repositories.NewConversationRepo(database)
	msgRepo := repositories.NewMessageRepo(database)
	notifRepo := repositories.NewNotificationRepo(database)

	notifier := notify.NewNotifier(notifRepo, unreadCache)

	convHandler := handlers.NewConversationHandler(convRepo, msgRepo, notifier, audit)
	notifHandler := handlers.NewNotificationHandler(notifRepo, notifier, unreadCache, audit)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	principal := middleware.PrincipalMiddleware()

	router.GET("/conversations", principal, convHandler.ListConversations)
	router.POST("/conversations", principal, convHandler.StartConversation)
	router.POST("/conversations/:conversation_id/read", principal, convHandler.MarkConversationRead)
	router.GET("/conversations/:conversation_id/messages", principal, convHandler.GetConversationMessages)
	router.POST("/conversations/:conversation_id/messages", principal, convHandler.PostConversationMessage)

	router.GET("/notifications", principal, notifHandler.ListNotifications)
	router.GET("/notifications/unread-count", principal, notifHandler.UnreadNotificationCount)
	router.POST("/notifications/:notification_id/read", principal, notifHandler.MarkNotificationRead)
	router.POST("/notifications/read-all", principal, notifHandler.MarkAllNotificationsRead)

	router.POST("/internal/events/project", notifHandler.ProjectEvent)

	handlers.RegisterDebugRoutes(router, audit, getEnv("DEBUG_ENDPOINTS", "") == "true")

	port := getEnv("PORT", "8086")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
