package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub string, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub":           sub,
		"email":         "ana@example.com",
		"user_metadata": map[string]interface{}{"full_name": "Ana"},
		"exp":           time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newAuthApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Get("/me", JwtMiddleware(testSecret, "sb-access-token"), func(ctx *fiber.Ctx) error {
		user, err := AuthUser(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(fiber.Map{"id": user.Id.String(), "email": user.Email, "name": user.Name})
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestJwtMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	app := newAuthApp()
	sub := "6f1b7a8e-51d4-4a0e-9a55-2c7d0e8e3a11"
	token := signToken(t, sub, jwt.SigningMethodHS256, []byte(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, sub, body["id"])
	assert.Equal(t, "Ana", body["name"])

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJwtMiddlewareRejects(t *testing.T) {
	app := newAuthApp()
	sub := "6f1b7a8e-51d4-4a0e-9a55-2c7d0e8e3a11"

	cases := map[string]string{
		"missing":      "",
		"wrong secret": signToken(t, sub, jwt.SigningMethodHS256, []byte("other")),
		"bad subject":  signToken(t, "not-a-uuid", jwt.SigningMethodHS256, []byte(testSecret)),
		"query token":  "?token=" + signToken(t, sub, jwt.SigningMethodHS256, []byte(testSecret)),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if name == "query token" {
				req = httptest.NewRequest(http.MethodGet, "/me"+token, nil)
			} else if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Authentication required", decode(t, resp)["error"])
		})
	}
}

func TestAdminKeyMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	app := fiber.New()
	app.Post("/admin", AdminKeyMiddleware(string(hash)), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	})
	disabled := fiber.New()
	disabled.Post("/admin", AdminKeyMiddleware(""), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	send := func(a *fiber.App, key string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if key != "" {
			req.Header.Set(HeaderAdminKey, key)
		}
		resp, err := a.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, send(app, "s3cret"))
	assert.Equal(t, http.StatusForbidden, send(app, "guess"))
	assert.Equal(t, http.StatusUnauthorized, send(app, ""))
	assert.Equal(t, http.StatusForbidden, send(disabled, "s3cret"))
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperror.Validation("Mode is required"), http.StatusBadRequest, "Mode is required"},
		{apperror.Unauthenticated("Authentication required"), http.StatusUnauthorized, "Authentication required"},
		{apperror.QuotaExceeded("Call limit reached"), http.StatusForbidden, "Call limit reached"},
		{apperror.NotFound("Conversation not found"), http.StatusNotFound, "Conversation not found"},
		{apperror.Upstream("Failed to create assistant: boom", errors.New("boom")), http.StatusInternalServerError, "Failed to create assistant: boom"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
		{fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "nope"},
	}

	for _, tc := range cases {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
		err := tc.err
		app.Get("/", func(ctx *fiber.Ctx) error { return err })

		resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, testErr)
		assert.Equal(t, tc.status, resp.StatusCode)
		assert.Equal(t, tc.message, decode(t, resp)["error"])
	}
}

type sampleRequest struct {
	Mode     string  `json:"mode" validate:"required"`
	Tone     string  `json:"tone" validate:"omitempty,oneof=professional casual friendly"`
	Duration float64 `json:"duration" validate:"gte=0"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Mode: "Friend"}))

	err := ValidateRequest(sampleRequest{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, "mode is required", err.Error())

	err = ValidateRequest(sampleRequest{Mode: "Friend", Tone: "grumpy"})
	assert.Equal(t, "tone must be one of: professional, casual, friendly", err.Error())

	err = ValidateRequest(sampleRequest{Mode: "Friend", Duration: -1})
	assert.Equal(t, "duration must be at least 0", err.Error())
}
