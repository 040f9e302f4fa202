package jwt

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

// FuzzInspect feeds arbitrary strings to Inspect. Goal: no panics.
func FuzzInspect(f *testing.F) {
	seed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": 1}).SignedString([]byte("k"))
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add("")
	f.Add("Bearer x.y.z")
	f.Add("eyJhbGciOiJub25lIn0.e30.")

	f.Fuzz(func(t *testing.T, token string) {
		c, err := Inspect(token)
		if err == nil && c == nil {
			t.Fatal("nil claims without error")
		}
	})
}
