package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dileep-u-k/course-assistant/internal/agent"
	"github.com/dileep-u-k/course-assistant/internal/api"
	"github.com/dileep-u-k/course-assistant/internal/calendar"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, a answerer) (*gin.Engine, *calendar.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := calendar.NewStore(filepath.Join(t.TempDir(), "events.json"), func() time.Time {
		return time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)

	engine := gin.New()
	NewAssistantHandler(a, store).Register(engine)
	return engine, store
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	a := &fakeAnswerer{answer: func(string) (*agent.Reply, error) {
		return &agent.Reply{Answer: "Hello!", Usage: api.Usage{TotalTokens: 42}, Latency: 1500 * time.Millisecond}, nil
	}}
	engine, _ := newTestServer(t, a)

	rec := serve(engine, http.MethodPost, "/api/v1/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Hello!","tools_used":[],"usage":{"prompt_tokens":0,"completion_tokens":0,"total_tokens":42},"latency_ms":1500}`, rec.Body.String())
	assert.Equal(t, []string{"hi"}, a.asked)
}

func TestHandleChatErrors(t *testing.T) {
	a := &fakeAnswerer{answer: func(string) (*agent.Reply, error) { return nil, errors.New("upstream down") }}
	engine, _ := newTestServer(t, a)

	rec := serve(engine, http.MethodPost, "/api/v1/chat", `{"msg":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(engine, http.MethodPost, "/api/v1/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, turnFailedNotice, body.Error)
}

func TestEventEndpoints(t *testing.T) {
	engine, store := newTestServer(t, echoAnswerer())

	rec := serve(engine, http.MethodGet, "/api/v1/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []calendar.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Equal(t, store.List(), events)

	lab := `{"title":"Lab Session","date":"2026-03-01","time":"10:00","type":"class"}`
	rec = serve(engine, http.MethodPost, "/api/v1/events", lab)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, lab, rec.Body.String())

	rec = serve(engine, http.MethodPost, "/api/v1/events", lab)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(engine, http.MethodPost, "/api/v1/events", `{"title":"Lab","date":"2026-03-32","time":"10:00","type":"class"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(engine, http.MethodPost, "/api/v1/events", `{"title":"Lab"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(engine, http.MethodDelete, "/api/v1/events/lab%20session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":1}`, rec.Body.String())

	rec = serve(engine, http.MethodDelete, "/api/v1/events/lab%20session", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
