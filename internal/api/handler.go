// Package api exposes the relay over HTTP for the local web client.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/publisher"
	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
)

// Composer sends a locally written message out to the channel.
type Composer interface {
	ComposeAndSend(ctx context.Context, text string) (*store.Record, error)
}

// Publisher injects a record into the local history without touching the
// channel. The test endpoint uses it.
type Publisher interface {
	Publish(ctx context.Context, rec store.Record, origin publisher.Origin) error
}

// Broadcaster is the push side of the history.
type Broadcaster interface {
	Subscribe() (string, <-chan store.Record)
	Unsubscribe(id string)
	Len() int
}

// StatusReporter aggregates the live state of the relay's moving parts.
type StatusReporter interface {
	Status(ctx context.Context) Status
}

// Status is the shape of GET /api/v1/status.
type Status struct {
	ChannelConfigured    bool     `json:"channel_configured"`
	PollerRunning        bool     `json:"poller_running"`
	TranslatorAvailable  bool     `json:"translator_available"`
	TranslatorModels     []string `json:"translator_models"`
	SelectedModel        string   `json:"selected_model"`
	ConnectedSubscribers int      `json:"connected_subscribers"`
	StoredMessages       int      `json:"stored_messages"`
}

type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
	Store       store.Store
	Composer    Composer
	Publisher   Publisher
	Broadcaster Broadcaster
	Reporter    StatusReporter
}

func NewHandler(
	st store.Store,
	composer Composer,
	pub Publisher,
	broadcaster Broadcaster,
	reporter StatusReporter,
	log logger.Logger,
) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{Logger: log},
		Store:       st,
		Composer:    composer,
		Publisher:   pub,
		Broadcaster: broadcaster,
		Reporter:    reporter,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		messages := v1.Group("/messages")
		{
			messages.GET("", h.ListMessages)
			messages.POST("", h.SendMessage)
			messages.POST("/test", h.InjectTestMessage)
		}

		v1.GET("/events", h.StreamEvents)
		v1.GET("/status", h.GetStatus)
	}
}

func (h *Handler) ListMessages(c *gin.Context) {
	records, err := h.Store.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": records})
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, errors.ErrValidation.WithCause(err).WithDetail("message", "invalid request body"))
		return
	}

	rec, err := h.Composer.ComposeAndSend(c.Request.Context(), req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// InjectTestMessage publishes a canned inbound-style message without touching
// the channel, so the UI pipeline can be exercised end to end offline.
func (h *Handler) InjectTestMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.HandleError(c, errors.ErrValidation.WithCause(err).WithDetail("message", "invalid request body"))
		return
	}
	text := req.Text
	if text == "" {
		text = "This is a test message."
	}

	rec := store.Record{
		ID:                "test-" + time.Now().Format("20060102150405.000"),
		OriginalText:      text,
		TranslatedText:    "[test] " + text,
		Timestamp:         time.Now().Unix(),
		SenderDisplayName: "Test Sender",
	}
	if err := h.Publisher.Publish(c.Request.Context(), rec, publisher.OriginTest); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Reporter.Status(c.Request.Context()))
}

// StreamEvents is the SSE feed. Each published record arrives as a "message"
// event; heartbeats keep intermediaries from timing the connection out.
func (h *Handler) StreamEvents(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	id, events := h.Broadcaster.Subscribe()
	defer h.Broadcaster.Unsubscribe(id)

	h.Logger.DebugwCtx(c.Request.Context(), "Event stream opened", "subscriber_id", id)

	c.SSEvent("connected", gin.H{"subscriber_id": id})
	c.Writer.Flush()

	heartbeat := time.NewTicker(constants.SSEHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			h.Logger.DebugwCtx(c.Request.Context(), "Event stream closed", "subscriber_id", id)
			return
		case rec, ok := <-events:
			if !ok {
				// Dropped by the hub for falling behind.
				return
			}
			c.SSEvent("message", rec)
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{})
			c.Writer.Flush()
		}
	}
}
