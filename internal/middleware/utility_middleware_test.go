package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performCORSRequest(origins []string, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware(origins))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware_WildcardAllowsEveryOrigin(t *testing.T) {
	w := performCORSRequest([]string{"*"}, "https://anywhere.example.com")

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_ListedOriginEchoedBack(t *testing.T) {
	w := performCORSRequest([]string{"https://app.example.com"}, "https://app.example.com")

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_UnlistedOriginGetsNoHeader(t *testing.T) {
	w := performCORSRequest([]string{"https://app.example.com"}, "https://other.example.com")

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
