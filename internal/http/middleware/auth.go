package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"docvault/internal/model"
)

// PrincipalLocalKey is the key under which the authenticated principal is stored in locals.
const PrincipalLocalKey = "principal"

var errMissingBearer = errors.New("missing bearer token")

// Claims are the bearer token claims this service reads. Tokens are issued elsewhere.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	// Secret is the HMAC key shared with the token issuer.
	Secret []byte
	// Issuer, when set, must match the token's iss claim.
	Issuer string
}

// Authenticate verifies an HS256 bearer token and stores the resulting
// model.Principal in locals. Requests without a valid token get 401.
func Authenticate(cfg AuthConfig) fiber.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }

	return func(c *fiber.Ctx) error {
		p, err := principalFromHeader(parser, keyFunc, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing credentials")
		}
		c.Locals(PrincipalLocalKey, p)
		return c.Next()
	}
}

func principalFromHeader(parser *jwt.Parser, keyFunc jwt.Keyfunc, header string) (model.Principal, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return model.Principal{}, errMissingBearer
	}

	var claims Claims
	if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, keyFunc); err != nil {
		return model.Principal{}, err
	}
	userID, err := model.ParseUserID(claims.Subject)
	if err != nil {
		return model.Principal{}, err
	}
	role := model.RoleUser
	if claims.Role != "" {
		if role, err = model.ParseRole(claims.Role); err != nil {
			return model.Principal{}, err
		}
	}
	return model.Principal{UserID: userID, Role: role}, nil
}

// RequireRole rejects authenticated principals without the given role with 403.
// It must run after Authenticate.
func RequireRole(role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing credentials")
		}
		if p.Role != role {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(c *fiber.Ctx) (model.Principal, bool) {
	p, ok := c.Locals(PrincipalLocalKey).(model.Principal)
	return p, ok
}
