package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmanager/internal/model"
	"docmanager/internal/service"
	"docmanager/internal/session"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})

	t.Run("replaces malformed request id", func(t *testing.T) {
		for _, bad := range []string{"has space", strings.Repeat("a", 129)} {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(RequestIDHeader, bad)

			resp, err := app.Test(req)
			require.NoError(t, err)

			got := resp.Header.Get(RequestIDHeader)
			assert.NotEqual(t, bad, got)
			_, perr := uuid.Parse(got)
			assert.NoError(t, perr)
		}
	})
}

func TestRequestIDFromContext(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/ctx", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFromContext(c.UserContext()))
	})

	req := httptest.NewRequest("GET", "/ctx", nil)
	req.Header.Set(RequestIDHeader, "corr-42")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "corr-42", string(body))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()

	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test?q=x", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
	assert.Equal(t, "info", logData["level"])
}

func TestLogger_ErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(LoggerWithWriter(&buf, time.UTC))

	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	app.Test(httptest.NewRequest("GET", "/missing", nil))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(fiber.StatusNotFound), entry["status"])

	buf.Reset()
	app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(fiber.StatusInternalServerError), entry["status"])
	assert.Equal(t, "error", entry["level"])
}

type resolverFunc func(ctx context.Context, token string) (*session.Session, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (*session.Session, error) {
	return f(ctx, token)
}

func TestRequireAuth(t *testing.T) {
	resolver := resolverFunc(func(_ context.Context, token string) (*session.Session, error) {
		switch token {
		case "good":
			return &session.Session{ID: "s1", UserID: 1, Username: "alice", Role: model.RoleUser}, nil
		case "broken":
			return nil, errors.New("redis down")
		}
		return nil, service.ErrAuth
	})

	app := fiber.New()
	app.Use(RequireAuth(resolver))
	app.Get("/me", func(c *fiber.Ctx) error {
		fromCtx, ok := session.FromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		fromLocals := c.Locals(SessionLocalKey).(*session.Session)
		return c.SendString(fromCtx.Username + "/" + fromLocals.ID)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", header: "Bearer good", wantStatus: fiber.StatusOK, wantBody: "alice/s1"},
		{name: "lowercase scheme", header: "bearer good", wantStatus: fiber.StatusOK, wantBody: "alice/s1"},
		{name: "missing header", header: "", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: fiber.StatusUnauthorized},
		{name: "rejected token", header: "Bearer nope", wantStatus: fiber.StatusUnauthorized},
		{name: "store failure", header: "Bearer broken", wantStatus: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantBody != "" {
				buf := new(bytes.Buffer)
				buf.ReadFrom(resp.Body)
				assert.Equal(t, tt.wantBody, buf.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	withRole := func(role string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if role != "" {
				c.Locals(SessionLocalKey, &session.Session{ID: "s", Role: role})
			}
			return c.Next()
		}
	}

	for _, tt := range []struct {
		role string
		want int
	}{
		{model.RoleAdmin, fiber.StatusOK},
		{model.RoleUser, fiber.StatusForbidden},
		{"", fiber.StatusUnauthorized},
	} {
		app := fiber.New()
		app.Get("/admin", withRole(tt.role), RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/admin", nil))
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, "role %q", tt.role)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(4)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	app := fiber.New()
	app.Post("/login", rl.Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func() int {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	// burst is perMinute/2
	assert.Equal(t, fiber.StatusOK, call())
	assert.Equal(t, fiber.StatusOK, call())
	assert.Equal(t, fiber.StatusTooManyRequests, call())

	now = now.Add(15 * time.Second)
	assert.Equal(t, fiber.StatusOK, call())
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))

	now = now.Add(limiterIdle + time.Second)
	assert.True(t, rl.allow("10.0.0.2"))

	rl.mu.Lock()
	_, stale := rl.limiters["10.0.0.1"]
	rl.mu.Unlock()
	assert.False(t, stale)
}
