// Package auth issues and verifies the bearer tokens guarding /api and serves
// the sign-up and login endpoints.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/tabdil-hub-backend/internal/user"
)

// ContextKey is where the verified token is stored in fiber locals.
const ContextKey = "user"

var ErrNoClaims = errors.New("no token claims in context")

// Claims is the identity carried by a verified token.
type Claims struct {
	UserID int
	Email  string
	Role   user.Role
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for u that expires after the configured ttl.
func (i *Issuer) Issue(u user.User) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"userId": u.ID,
		"email":  u.Email,
		"role":   string(u.Role),
		"iat":    now.Unix(),
		"exp":    now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ClaimsFromCtx reads the identity the middleware stored for this request.
func ClaimsFromCtx(c *fiber.Ctx) (Claims, error) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok {
		return Claims{}, ErrNoClaims
	}
	mapClaims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrNoClaims
	}

	id, err := intClaim(mapClaims["userId"])
	if err != nil {
		return Claims{}, err
	}
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	return Claims{UserID: id, Email: email, Role: user.Role(role)}, nil
}

// intClaim accepts the shapes a numeric claim takes after JSON decoding or
// when injected directly in tests.
func intClaim(raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	}
	return 0, ErrNoClaims
}
