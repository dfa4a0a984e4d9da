package api

import (
	"net/http"

	"chatonline-world/backend/internal/models"
	"chatonline-world/backend/internal/service"
	apperrors "chatonline-world/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// MessageController handles the message endpoints. Its errors are plain text.
type MessageController struct {
	messageService *service.MessageService
}

// NewMessageController creates a new message controller
func NewMessageController(messageService *service.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

// RegisterRoutes registers the routes for the message controller
func (c *MessageController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/messages", c.ListMessages)
	router.POST("/messages", c.CreateMessage)
}

// ListMessages purges expired messages and returns the remaining ones
// matching the query, newest first
func (c *MessageController) ListMessages(ctx *gin.Context) {
	var params service.ListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		ctx.Error(apperrors.NewBadRequestError("INVALID_QUERY", "Invalid query parameters").AsText())
		return
	}

	messages, err := c.messageService.List(ctx.Request.Context(), params)
	if err != nil {
		ctx.Error(err)
		return
	}

	out := make([]models.MessageDict, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.ToDict())
	}
	ctx.JSON(http.StatusOK, out)
}

// CreateMessage stores a new message from a JSON body
func (c *MessageController) CreateMessage(ctx *gin.Context) {
	var req service.CreateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(apperrors.NewBadRequestError("INVALID_JSON", "Invalid JSON body").AsText().WithCause(err))
		return
	}

	message, err := c.messageService.Create(ctx.Request.Context(), req)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, message.ToDict())
}
