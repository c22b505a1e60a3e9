package http

import (
	"net/http"

	"github.com/gdugdh24/sparkchat-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/sparkchat-backend/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Router struct {
	matchHandler        *handler.MatchHandler
	conversationHandler *handler.ConversationHandler
	authMiddleware      *middleware.AuthMiddleware
	realtime            http.Handler
	log                 logrus.FieldLogger
}

func NewRouter(
	matchHandler *handler.MatchHandler,
	conversationHandler *handler.ConversationHandler,
	authMiddleware *middleware.AuthMiddleware,
	realtime http.Handler,
	log logrus.FieldLogger,
) *Router {
	return &Router{
		matchHandler:        matchHandler,
		conversationHandler: conversationHandler,
		authMiddleware:      authMiddleware,
		realtime:            realtime,
		log:                 log,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(r.log))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// The socket authenticates itself during the handshake.
	router.GET("/ws", gin.WrapH(r.realtime))

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			matches := protected.Group("/matches")
			{
				matches.GET("", r.matchHandler.ListMatches)
				matches.GET("/discovery", r.matchHandler.Discover)
				matches.POST("/like", r.matchHandler.Like)
				matches.POST("/pass", r.matchHandler.Pass)
				matches.POST("/conversation", r.matchHandler.EnsureConversation)
			}

			conversations := protected.Group("/conversations")
			{
				conversations.GET("", r.conversationHandler.ListConversations)
				conversations.GET("/:id/messages", r.conversationHandler.ListMessages)
				conversations.POST("/:id/messages", r.conversationHandler.SendMessage)
				conversations.POST("/:id/read", r.conversationHandler.MarkRead)
			}
		}
	}

	return router
}
