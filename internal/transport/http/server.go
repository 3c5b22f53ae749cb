package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docubot/internal/ai"
	appsvc "docubot/internal/app"
	"docubot/internal/bootstrap"
	"docubot/internal/platform/rabbitmq"
	"docubot/internal/repository"
	"docubot/internal/session"
	"docubot/internal/transport/http/handler"
	"docubot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	chatbotRepo := repository.NewChatbotRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)
	sessionRepo := repository.NewChatSessionRepository(app.MySQL)
	messageRepo := repository.NewChatMessageRepository(app.MySQL)

	historyCache := session.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	memory := session.NewManager(messageRepo, historyCache)
	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)

	chatbotService := appsvc.NewChatbotService(chatbotRepo)
	documentService := appsvc.NewDocumentService(documentRepo, app.ObjectStore, app.IndexManager)
	ingestService := appsvc.NewIngestService(documentRepo, app.ObjectStore, app.Chunker, app.IndexManager)
	chatService := appsvc.NewChatService(
		sessionRepo,
		messageRepo,
		memory,
		publisher,
		app.IndexManager,
		app.AI,
		app.AI,
		ai.ChatConfig{
			BaseURL: app.Config.LLM.BaseURL,
			APIKey:  app.Config.LLM.APIKey,
			Model:   app.Config.LLM.Model,
		},
		ai.EmbeddingConfig{
			BaseURL: app.Config.LLM.BaseURL,
			APIKey:  app.Config.LLM.APIKey,
			Model:   app.Config.LLM.EmbeddingModel,
		},
		appsvc.RetrievalOptions{
			TopK:       app.Config.Ingest.TopK,
			FetchK:     app.Config.Ingest.FetchK,
			LambdaMult: app.Config.Ingest.LambdaMult,
		},
	)

	chatbotHandler := handler.NewChatbotHandler(chatbotService)
	documentHandler := handler.NewDocumentHandler(chatbotService, documentService)
	ingestHandler := handler.NewIngestHandler(chatbotService, ingestService, app.Tasks)
	chatHandler := handler.NewChatHandler(chatbotService, chatService)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))

	v1.POST("/chatbots", chatbotHandler.Create)
	v1.GET("/chatbots", chatbotHandler.List)

	v1.POST("/chatbots/:id/documents", documentHandler.Upload)
	v1.GET("/chatbots/:id/documents", documentHandler.List)
	v1.DELETE("/chatbots/:id/documents/:doc_id", documentHandler.Delete)

	v1.POST("/chatbots/:id/process", ingestHandler.Process)
	v1.GET("/chatbots/:id/process/status", ingestHandler.Status)

	v1.POST("/chatbots/:id/sessions", chatHandler.CreateSession)
	v1.GET("/chatbots/:id/sessions", chatHandler.ListSessions)
	v1.DELETE("/chatbots/:id/sessions/:session_id", chatHandler.DeleteSession)
	v1.POST("/chatbots/:id/chat", chatHandler.Chat)
	v1.GET("/chatbots/:id/history", chatHandler.GetHistory)

	return router
}
