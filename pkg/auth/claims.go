package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles understood by this service. The identity service may know more; any
// other value is treated as having no access here.
const (
	RoleMember = "member"
	RoleStaff  = "staff"
)

// Scope is the caller identity resolved by the external access service. The
// booking core trusts it: eligibility and tenant membership were evaluated
// upstream before the token was issued.
type Scope struct {
	TenantID       uuid.UUID
	LocationID     uuid.UUID
	UserID         uuid.UUID
	Role           string
	EligibleToBook bool
}

func (s Scope) IsStaff() bool { return s.Role == RoleStaff }

// AccessClaims is the wire shape of the access token.
type AccessClaims struct {
	TenantID       string `json:"tenant_id"`
	LocationID     string `json:"location_id"`
	Role           string `json:"role"`
	EligibleToBook bool   `json:"eligible_to_book"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid access token")

// ParseToken verifies the token signature and expiry and returns the caller
// scope. Any malformed id makes the whole token invalid.
func ParseToken(tokenStr, secret string) (*Scope, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	locationID, err := uuid.Parse(claims.LocationID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Scope{
		TenantID:       tenantID,
		LocationID:     locationID,
		UserID:         userID,
		Role:           claims.Role,
		EligibleToBook: claims.EligibleToBook,
	}, nil
}

// SignToken issues an access token for the given scope. Production tokens
// come from the identity service; this is used by tooling and tests.
func SignToken(scope Scope, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		TenantID:       scope.TenantID.String(),
		LocationID:     scope.LocationID.String(),
		Role:           scope.Role,
		EligibleToBook: scope.EligibleToBook,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   scope.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
