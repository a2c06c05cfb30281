package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func brotliRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "kort") })
	r.GET("/large", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("conversie ", 500))
	})
	r.GET("/xlsx", func(c *gin.Context) {
		c.Data(http.StatusOK, xlsxType, []byte(strings.Repeat("PK", 1024)))
	})
	return r
}

func getWithBrotli(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBrotli_SmallResponsePassesThrough(t *testing.T) {
	w := getWithBrotli(brotliRouter(), "/small")

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "kort", w.Body.String())
}

func TestBrotli_CompressesLargeResponse(t *testing.T) {
	w := getWithBrotli(brotliRouter(), "/large")

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("conversie ", 500), string(plain))
}

func TestBrotli_SkipsSpreadsheets(t *testing.T) {
	w := getWithBrotli(brotliRouter(), "/xlsx")

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, 2048, w.Body.Len())
}

func TestBrotli_SkipsWithoutAcceptEncoding(t *testing.T) {
	w := httptest.NewRecorder()
	brotliRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/large", nil))

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, 5000, w.Body.Len())
}

func TestCacheHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/public", CacheControl(300), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/private", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
