package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/middleware"
	"github.com/noah-isme/eduflow-api/pkg/middleware/requestid"
)

type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *envelopeError         `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newTestRouter(handlers ...routeRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware())
	r.Use(middleware.WithResponseMeta())
	api := r.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return r
}

func perform(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
