package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a token cannot be decoded as a JWT.
var ErrMalformed = errors.New("malformed token")

// Claims is the subset of token claims the console cares about.
type Claims struct {
	Subject   string
	UserID    string
	Role      string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carries an exp claim.
func (c *Claims) HasExpiry() bool {
	return c != nil && !c.ExpiresAt.IsZero()
}

// Expired reports whether exp is in the past relative to now. Tokens without
// an exp claim never expire.
func (c *Claims) Expired(now time.Time) bool {
	if !c.HasExpiry() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

var parser = jwt.NewParser()

// Inspect decodes token and returns its claims. The signature is not checked.
func Inspect(token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMalformed
	}

	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mc); err != nil {
		return nil, ErrMalformed
	}

	out := &Claims{
		UserID: firstString(mc, "id", "_id", "userId", "uid"),
		Role:   firstString(mc, "role"),
		Email:  firstString(mc, "email"),
	}
	if sub, err := mc.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if out.UserID == "" {
		out.UserID = out.Subject
	}

	return out, nil
}

func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := mc[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
