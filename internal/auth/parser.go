package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
)

var ErrInvalidToken = errors.New("invalid access token")

// Claims is the access token payload issued by the identity service.
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates an HS256 access token and returns the caller it names.
func (p *Parser) Parse(token string) (model.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: user_id", ErrInvalidToken)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: tenant_id", ErrInvalidToken)
	}
	role := model.UserRole(strings.ToUpper(strings.TrimSpace(claims.Role)))
	switch role {
	case model.UserRoleAdmin, model.UserRoleManager, model.UserRoleViewer:
	default:
		return model.Principal{}, fmt.Errorf("%w: role %q", ErrInvalidToken, claims.Role)
	}

	return model.Principal{UserID: userID, TenantID: tenantID, Role: role}, nil
}

// Issue signs an access token for principal.
func (p *Parser) Issue(principal model.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   principal.UserID.String(),
		TenantID: principal.TenantID.String(),
		Role:     string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
