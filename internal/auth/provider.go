package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/golang-jwt/jwt/v4"
)

const (
	claimCampusID = "campus_id"

	defaultTokenTTL = 30 * 24 * time.Hour
)

// Claims is what a validated bearer token asserts about the operator
type Claims struct {
	UserID   string
	CampusID string
}

// Provider validates and mints operator bearer tokens
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
	GenerateToken(userID, campusID string, ttl time.Duration) (string, time.Time, error)
}

type hmacAuth struct {
	secret      []byte
	userIDClaim string
	now         func() time.Time
}

// NewProvider returns the HS256 provider keyed by cfg.Auth.Secret
func NewProvider(cfg *config.Configuration) Provider {
	claim := cfg.Auth.UserIDClaim
	if claim == "" {
		claim = "sub"
	}
	return &hmacAuth{
		secret:      []byte(cfg.Auth.Secret),
		userIDClaim: claim,
		now:         time.Now,
	}
}

func (a *hmacAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if len(a.secret) == 0 {
		return nil, ierr.NewError("auth secret is not configured").
			WithHint("Authentication is not configured").
			Mark(ierr.ErrPermissionDenied)
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"])).
				Mark(ierr.ErrPermissionDenied)
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, ok := claims[a.userIDClaim].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return nil, ierr.NewErrorf("token missing %s claim", a.userIDClaim).
			WithHint("Token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}

	// campus scope is optional
	campusID, _ := claims[claimCampusID].(string)

	return &Claims{UserID: userID, CampusID: campusID}, nil
}

// GenerateToken signs a token for userID. A zero ttl uses thirty days.
func (a *hmacAuth) GenerateToken(userID, campusID string, ttl time.Duration) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, ierr.NewError("missing required parameter: userID").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}
	if len(a.secret) == 0 {
		return "", time.Time{}, ierr.NewError("auth secret is not configured").
			WithHint("Set FEELEDGER_AUTH_SECRET before issuing tokens").
			Mark(ierr.ErrValidation)
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := a.now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		a.userIDClaim: userID,
		"exp":         expiresAt.Unix(),
		"iat":         now.Unix(),
	}
	if campusID != "" {
		claims[claimCampusID] = campusID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, ierr.WithError(err).
			WithHint("Failed to sign token").
			Mark(ierr.ErrSystem)
	}
	return signed, expiresAt, nil
}
