// In file: cmd/assistant/handler.go
package main

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/dileep-u-k/course-assistant/internal/api"
	"github.com/dileep-u-k/course-assistant/internal/calendar"

	"github.com/gin-gonic/gin"
)

// AssistantHandler serves the chat and calendar endpoints.
type AssistantHandler struct {
	assistant answerer
	store     *calendar.Store

	// Runs are serialized: one user turn completes before the next starts.
	runMu sync.Mutex
}

func NewAssistantHandler(assistant answerer, store *calendar.Store) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, store: store}
}

// Register mounts the handler's routes under /api/v1.
func (h *AssistantHandler) Register(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/chat", h.HandleChat)
		v1.GET("/events", h.HandleListEvents)
		v1.POST("/events", h.HandleAddEvent)
		v1.DELETE("/events/:title", h.HandleRemoveEvent)
	}
}

func (h *AssistantHandler) HandleChat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}
	log.Printf("--- New chat request (Prompt: '%.30s...') ---", req.Message)

	h.runMu.Lock()
	reply, err := h.assistant.Answer(c.Request.Context(), req.Message)
	h.runMu.Unlock()
	if err != nil {
		logTurnError("Chat turn failed", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: turnFailedNotice})
		return
	}

	toolsUsed := reply.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	c.JSON(http.StatusOK, api.ChatResponse{
		Answer:    reply.Answer,
		ToolsUsed: toolsUsed,
		Usage:     reply.Usage,
		LatencyMS: reply.Latency.Milliseconds(),
	})
}

func (h *AssistantHandler) HandleListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.List())
}

func (h *AssistantHandler) HandleAddEvent(c *gin.Context) {
	var req api.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}
	event, err := h.store.Add(calendar.Event{Title: req.Title, Date: req.Date, Time: req.Time, Type: req.Type})
	switch {
	case errors.Is(err, calendar.ErrEventExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "event": event})
	case errors.Is(err, calendar.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case err != nil:
		log.Printf("❌ Failed to add event: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusCreated, event)
	}
}

func (h *AssistantHandler) HandleRemoveEvent(c *gin.Context) {
	removed, err := h.store.Remove(c.Param("title"))
	switch {
	case errors.Is(err, calendar.ErrEventNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, calendar.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case err != nil:
		log.Printf("❌ Failed to remove event: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	}
}
