package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token seconds
}

// Principal is the identity carried by a token.
type Principal struct {
	UserID int64
	Role   string // user | agent | admin
	Email  string
}

type JWTManager struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTManager(signingKey string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		signingKey: []byte(signingKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

type AccessClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email"`
}

type RefreshClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email"`
}

// Issue signs an access/refresh pair. The refresh claims are returned so the
// caller can register the JTI in the refresh store.
func (m *JWTManager) Issue(p Principal) (Tokens, RefreshClaims, error) {
	now := m.now()
	sub := strconv.FormatInt(p.UserID, 10)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		Role:  p.Role,
		Email: p.Email,
	})
	accessToken, err := access.SignedString(m.signingKey)
	if err != nil {
		return Tokens{}, RefreshClaims{}, err
	}

	refreshClaims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
		Role:  p.Role,
		Email: p.Email,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(m.signingKey)
	if err != nil {
		return Tokens{}, RefreshClaims{}, err
	}

	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, refreshClaims, nil
}

func (m *JWTManager) ParseAccess(tokenStr string) (Principal, error) {
	var claims AccessClaims
	if err := m.parse(tokenStr, &claims); err != nil {
		return Principal{}, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	// refresh tokens carry a JTI and must not pass as access tokens
	if err != nil || id <= 0 || claims.Role == "" || claims.ID != "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: id, Role: claims.Role, Email: claims.Email}, nil
}

func (m *JWTManager) ParseRefresh(tokenStr string) (Principal, RefreshClaims, error) {
	var claims RefreshClaims
	if err := m.parse(tokenStr, &claims); err != nil {
		return Principal{}, RefreshClaims{}, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 || claims.ID == "" {
		return Principal{}, RefreshClaims{}, ErrInvalidToken
	}
	return Principal{UserID: id, Role: claims.Role, Email: claims.Email}, claims, nil
}

func (m *JWTManager) parse(tokenStr string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}
