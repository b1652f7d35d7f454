package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsEcho(origins ...string) *echo.Echo {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderContentType},
		ExposeHeaders: []string{"X-Cache"},
		MaxAge:        10 * time.Minute,
	}))
	e.GET("/api/chart.png", func(c echo.Context) error {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
		wantExpose string
		wantMaxAge string
	}{
		{"wildcard echoes origin", []string{"*"}, http.MethodGet, "https://dash.example", http.StatusOK, "https://dash.example", "X-Cache", ""},
		{"listed origin", []string{"https://a.example"}, http.MethodGet, "https://a.example", http.StatusOK, "https://a.example", "X-Cache", ""},
		{"unlisted origin", []string{"https://a.example"}, http.MethodGet, "https://b.example", http.StatusOK, "", "", ""},
		{"no origin header", []string{"*"}, http.MethodGet, "", http.StatusOK, "", "", ""},
		{"preflight", []string{"*"}, http.MethodOptions, "https://dash.example", http.StatusNoContent, "https://dash.example", "X-Cache", "600"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/chart.png", nil)
			if tt.origin != "" {
				req.Header.Set(echo.HeaderOrigin, tt.origin)
			}
			rec := httptest.NewRecorder()
			corsEcho(tt.origins...).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
			assert.Equal(t, tt.wantExpose, rec.Header().Get(echo.HeaderAccessControlExposeHeaders))
			assert.Equal(t, tt.wantMaxAge, rec.Header().Get(echo.HeaderAccessControlMaxAge))
		})
	}
}
