package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds. The kind is embedded as the audience claim and checked on
// verification, so a verification token presented on the session path (or
// the other way round) is rejected even though both share the secret.
const (
	KindSession = "session"
	KindVerify  = "verify"
)

const (
	SessionTTL = 7 * 24 * time.Hour
	VerifyTTL  = time.Hour
)

var (
	ErrMalformed        = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
)

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the two token kinds with a shared HMAC secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue produces a signed token of the given kind for the given user.
func (c *Codec) Issue(kind string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{kind},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature, expiry and kind, returning the embedded user id.
// It fails with ErrExpired for a well-signed but stale token, with
// ErrSignatureInvalid for a bad signature, and with ErrMalformed for
// everything else, including a kind mismatch.
func (c *Codec) Verify(kind, tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithAudience(kind))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrSignatureInvalid
		default:
			return 0, ErrMalformed
		}
	}

	if !token.Valid {
		return 0, ErrMalformed
	}

	return claims.UserID, nil
}
