package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for opaque tokens
	"encoding/hex"  // hex encoding and decoding functions
	"errors"        // sentinel errors for token parsing
	"time"          // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and sent in the Authorization header when
// calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived opaque token used to obtain new
// access tokens. The Raw field is returned to the client once; only a
// SHA-256 hash of it is persisted.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// Claims extracted from a parsed access token.
type Claims struct {
	UserID uint64
	Name   string
	Role   string
}

// ErrInvalidToken is returned when an access token fails signature or
// structure validation.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user. The JWT
// carries the standard subject (sub), expiration (exp) and issued-at
// (iat) claims plus the user's display name and role, so handlers can
// attribute mutations without re-reading the users table.
func NewAccessToken(secret string, userID uint64, name, role string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccess validates signature and expiry and returns the claims.
func ParseAccess(secret, raw string) (Claims, error) {
	return parseAccess(secret, raw, false)
}

// ParseAccessAllowExpired validates the signature but accepts an expired
// token. The refresh exchange uses it: the caller proves possession of
// the previous access token even after its TTL has lapsed.
func ParseAccessAllowExpired(secret, raw string) (Claims, error) {
	return parseAccess(secret, raw, true)
}

func parseAccess(secret, raw string, allowExpired bool) (Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	// With WithoutClaimsValidation the parser still verifies the
	// signature; an expired token parses cleanly while a tampered one
	// does not.
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	var c Claims
	switch sub := mc["sub"].(type) {
	case float64:
		c.UserID = uint64(sub)
	default:
		return Claims{}, ErrInvalidToken
	}
	c.Name, _ = mc["name"].(string)
	c.Role, _ = mc["role"].(string)
	if c.Role == "" {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw)
// and its expiration time. The ttlDays parameter controls how many days
// the refresh token is valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// NewResetToken returns a 64-byte random token for the password reset
// flow together with its expiry.
func NewResetToken(ttl time.Duration) (RefreshToken, error) {
	raw, err := randomHex(64) // 64 bytes -> 128 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: raw, Exp: time.Now().UTC().Add(ttl)}, nil
}

// HashTokenRaw returns the SHA-256 hash of a raw opaque token as a hex
// string. Refresh and reset tokens are stored hashed so a leaked table
// cannot be replayed against the API.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
