package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Claims is the token payload minted for authenticated sessions.
type Claims struct {
	jwt.RegisteredClaims
	UID string `json:"uid"`
}

// TokenService mints and validates the opaque session credentials handed
// to clients.
type TokenService struct {
	signingKey      []byte
	tokenExpiration int // hours
	issuer          string
	audience        jwt.ClaimStrings
}

// NewTokenService returns a service signing HS256 tokens with the given
// key.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, audience []string) *TokenService {
	if tokenExpiration <= 0 {
		tokenExpiration = 24
	}
	return &TokenService{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
	}
}

// Generate mints a token for the user.
func (ts *TokenService) Generate(user *User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID: user.ID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims.
func (ts *TokenService) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, goerrors.New("unexpected signing method", goerrors.CategoryAuth).
				WithMetadata(map[string]any{"alg": t.Header["alg"]})
		}
		return ts.signingKey, nil
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "invalid token")
	}
	if !token.Valid {
		return nil, goerrors.New("invalid token", goerrors.CategoryAuth)
	}
	return claims, nil
}
