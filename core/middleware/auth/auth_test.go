package auth_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-sync/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.Get("/runs", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/swagger/index.html", func(c *fiber.Ctx) error { return c.SendString("docs") })
	return app
}

func TestAuth(t *testing.T) {
	app := newApp(auth.Config{
		ApiKey: "secret",
		Skip:   func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/swagger") },
	})

	tests := []struct {
		name   string
		path   string
		header string
		value  string
		want   int
	}{
		{"NoKey", "/runs", "", "", fiber.StatusUnauthorized},
		{"WrongKey", "/runs", auth.HeaderName, "nope", fiber.StatusUnauthorized},
		{"HeaderKey", "/runs", auth.HeaderName, "secret", fiber.StatusOK},
		{"Bearer", "/runs", fiber.HeaderAuthorization, "Bearer secret", fiber.StatusOK},
		{"BadScheme", "/runs", fiber.HeaderAuthorization, "Basic secret", fiber.StatusUnauthorized},
		{"Skipped", "/swagger/index.html", "", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuth_DisabledWithoutKey(t *testing.T) {
	app := newApp(auth.Config{})

	resp, err := app.Test(httptest.NewRequest("GET", "/runs", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
