package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"  // secure random number generation
    "encoding/hex" // hex encoding of random session ids
    "errors"
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
    Token string    `json:"token"`
    Exp   time.Time `json:"expires"`
}

// NewAccessToken builds and signs an HS256 JWT binding a user to a session.
// The claims are sub (user id), role, sid (session id), exp and iat.  The
// sid selects the persisted session record on later requests.
func NewAccessToken(secret, userID, role, sid string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "sid":  sid,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw with secret and returns its claims.  Only
// HMAC signatures are accepted and the sid claim must be present.
func ParseAccessToken(secret, raw string) (jwt.MapClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, ErrInvalidToken
    }
    if sid, _ := claims["sid"].(string); sid == "" {
        return nil, ErrInvalidToken
    }
    return claims, nil
}

// NewSessionID returns 32 hex characters of secure randomness.
func NewSessionID() (string, error) {
    return randomHex(16)
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
