// Package auth mints and decodes the HMAC-signed tokens issued on login.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the fixed iss claim stamped on every minted token.
const Issuer = "pelaghisoftware.com"

// Claims carried by a token: jti (random uuid), iss, sub (username), iat, exp.
type Claims struct {
	jwt.RegisteredClaims
}

// DecodeErrorKind enumerates the ways a token can fail to decode. The auth
// resolver collapses all of them to a plain "invalid"; the kinds exist so
// the boundary can log and tests can assert classification.
type DecodeErrorKind int

const (
	DecodeMalformed DecodeErrorKind = iota
	DecodeUnsupportedAlgorithm
	DecodeBadSignature
	DecodeExpired
	DecodeMissing
)

func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeMalformed:
		return "malformed"
	case DecodeUnsupportedAlgorithm:
		return "unsupported algorithm"
	case DecodeBadSignature:
		return "bad signature"
	case DecodeExpired:
		return "expired"
	case DecodeMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// DecodeError describes a failed token decode. No decode-failure detail may
// leak past the auth resolver.
type DecodeError struct {
	Kind  DecodeErrorKind
	cause error
}

func (e *DecodeError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("token decode: %s", e.Kind)
	}
	return fmt.Sprintf("token decode: %s: %v", e.Kind, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

var errUnsupportedAlg = errors.New("unexpected signing method")

// DecodeSecret turns the base64-encoded configured secret into the raw
// symmetric signing key.
func DecodeSecret(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("secret key is not valid base64: %w", err)
	}
	return key, nil
}

// GenerateToken mints an HS256 token for the given subject with a fresh
// random id and the fixed issuer.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Decode verifies the signature and expiry of a token and returns its claims.
// An empty token string fails with DecodeMissing. Every failure mode maps to
// exactly one DecodeErrorKind.
func Decode(tokenString string, secretKey []byte) (*Claims, *DecodeError) {
	if tokenString == "" {
		return nil, &DecodeError{Kind: DecodeMissing}
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errUnsupportedAlg, t.Header["alg"])
		}
		return secretKey, nil
	})

	if err != nil {
		return nil, classify(err)
	}

	if !token.Valid {
		return nil, &DecodeError{Kind: DecodeBadSignature}
	}

	return claims, nil
}

func classify(err error) *DecodeError {
	switch {
	case errors.Is(err, errUnsupportedAlg):
		return &DecodeError{Kind: DecodeUnsupportedAlgorithm, cause: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &DecodeError{Kind: DecodeExpired, cause: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &DecodeError{Kind: DecodeBadSignature, cause: err}
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &DecodeError{Kind: DecodeMalformed, cause: err}
	default:
		return &DecodeError{Kind: DecodeMalformed, cause: err}
	}
}
