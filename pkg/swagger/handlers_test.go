package swagger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	NewHandlers().RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRegisterRoutes(t *testing.T) {
	for _, path := range []string{"/openapi.yaml", "/openapi.json", "/swagger-ui", "/api-docs"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, serve(t, path).Code)
		})
	}
}

func TestServeOpenAPISpec(t *testing.T) {
	w := serve(t, "/openapi.yaml")
	assert.Equal(t, "application/x-yaml", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Body.String(), "/api/v1/quote:")
}

func TestServeOpenAPISpecJSON(t *testing.T) {
	w := serve(t, "/openapi.json")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	for _, path := range []string{"/api/v1/plans", "/api/v1/plans/{id}/options", "/api/v1/quote", "/api/v1/deliveries/board", "/api/v1/dashboard"} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestServeSwaggerUI(t *testing.T) {
	w := serve(t, "/swagger-ui")
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `url: "/openapi.yaml"`)
}
