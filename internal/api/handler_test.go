package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claytonbrgsdev/slack-translator-app/internal/hub"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/publisher"
	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
	apperrors "github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
)

type fakeComposer struct {
	err  error
	sent []string
}

func (f *fakeComposer) ComposeAndSend(ctx context.Context, text string) (*store.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, text)
	return &store.Record{ID: "sent-1", OriginalText: text, SentByCurrentUser: true}, nil
}

type fakeReporter struct {
	status Status
}

func (f *fakeReporter) Status(ctx context.Context) Status { return f.status }

func newTestRouter(t *testing.T, composer *fakeComposer) (*gin.Engine, *store.MemoryStore, *hub.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore(10)
	h := hub.New()
	pub := publisher.New(st, h, logger.NopLogger())
	handler := NewHandler(st, composer, pub, h, &fakeReporter{status: Status{PollerRunning: true}}, logger.NopLogger())

	router := gin.New()
	handler.RegisterRoutes(router)
	return router, st, h
}

func TestListMessages(t *testing.T) {
	router, st, _ := newTestRouter(t, &fakeComposer{})
	require.NoError(t, st.Append(context.Background(), store.Record{ID: "1", OriginalText: "hello"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Messages []store.Record `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "hello", body.Messages[0].OriginalText)
}

func TestListMessagesEmpty(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeComposer{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"messages":[]}`, w.Body.String())
}

func TestSendMessage(t *testing.T) {
	composer := &fakeComposer{}
	router, _, _ := newTestRouter(t, composer)

	body := bytes.NewBufferString(`{"text":"olá"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"olá"}, composer.sent)
}

func TestSendMessageValidationError(t *testing.T) {
	composer := &fakeComposer{err: apperrors.ErrValidation.WithDetail("message", "message text is empty")}
	router, _, _ := newTestRouter(t, composer)

	body := bytes.NewBufferString(`{"text":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp["error_code"])
}

func TestSendMessageUnavailableTranslator(t *testing.T) {
	composer := &fakeComposer{err: apperrors.ErrUnavailable}
	router, _, _ := newTestRouter(t, composer)

	body := bytes.NewBufferString(`{"text":"olá"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestInjectTestMessage(t *testing.T) {
	router, st, _ := newTestRouter(t, &fakeComposer{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/test", bytes.NewBufferString(`{"text":"ping"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	records, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ping", records[0].OriginalText)
	assert.Contains(t, records[0].TranslatedText, "[test]")
}

func TestInjectTestMessageDefaultsText(t *testing.T) {
	router, st, _ := newTestRouter(t, &fakeComposer{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	records, _ := st.List(context.Background())
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].OriginalText)
}

func TestGetStatus(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeComposer{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var status Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.PollerRunning)
}
