package serverutils

import (
	"strings"

	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalAuthUserID = "auth_user_id"
	LocalEmail      = "email"
	LocalName       = "name"
)

// providerClaims mirrors the access token minted by the auth provider.
type providerClaims struct {
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// JwtMiddleware verifies the provider access token. The session cookie is
// tried first, then the Authorization header; websocket upgrades may also
// pass it as ?token= since browsers cannot set headers there.
func JwtMiddleware(secret, cookieName string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenString := extractToken(ctx, cookieName)
		if tokenString == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Authentication required"))
		}

		claims := &providerClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Authentication required"))
		}

		if _, err := uuid.Parse(claims.Subject); err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Authentication required"))
		}

		ctx.Locals(LocalAuthUserID, claims.Subject)
		ctx.Locals(LocalEmail, claims.Email)
		ctx.Locals(LocalName, metadataName(claims.UserMetadata))

		return ctx.Next()
	}
}

// AuthUser rebuilds the caller identity stored by JwtMiddleware.
func AuthUser(ctx *fiber.Ctx) (entity.AuthUser, error) {
	idStr, _ := ctx.Locals(LocalAuthUserID).(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return entity.AuthUser{}, apperror.Unauthenticated("Authentication required")
	}
	email, _ := ctx.Locals(LocalEmail).(string)
	name, _ := ctx.Locals(LocalName).(string)

	return entity.AuthUser{Id: id, Email: email, Name: name}, nil
}

func extractToken(ctx *fiber.Ctx, cookieName string) string {
	if cookieName != "" {
		if v := ctx.Cookies(cookieName); v != "" {
			return v
		}
	}

	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(after)
	}

	if strings.EqualFold(ctx.Get(fiber.HeaderUpgrade), "websocket") {
		return ctx.Query("token")
	}
	return ""
}

func metadataName(meta map[string]interface{}) string {
	for _, key := range []string{"name", "full_name"} {
		if v, ok := meta[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
