package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLocalLoginDisabled is returned by Login when no credential store is
	// configured and tokens come from the external identity provider.
	ErrLocalLoginDisabled = errors.New("local login is disabled")
)

// SessionService validates the bearer tokens that identify shoppers and, for
// the in-memory backend, issues them.
type SessionService struct {
	creds      repositories.CredentialRepository
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewSessionService creates a new SessionService. creds may be nil.
func NewSessionService(creds repositories.CredentialRepository, jwtSecret string, tokenDurat time.Duration) *SessionService {
	if tokenDurat <= 0 {
		tokenDurat = 24 * time.Hour
	}
	return &SessionService{
		creds:      creds,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDurat,
	}
}

// LocalLogin reports whether Login and AddUser are available.
func (s *SessionService) LocalLogin() bool {
	return s.creds != nil
}

// AddUser stores a local account with a bcrypt hash of password.
func (s *SessionService) AddUser(ctx context.Context, userID, username, password string) error {
	if s.creds == nil {
		return ErrLocalLoginDisabled
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.creds.Create(ctx, &models.Credential{
		UserID:       userID,
		Username:     username,
		PasswordHash: string(hash),
	})
}

// Login checks a local account and returns a session with a fresh token.
func (s *SessionService) Login(ctx context.Context, username, password string) (models.Session, error) {
	if s.creds == nil {
		return models.Session{}, ErrLocalLoginDisabled
	}
	cred, err := s.creds.GetByUsername(ctx, username)
	if err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}

	token, err := s.IssueToken(cred.UserID, cred.Username)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{UserID: cred.UserID, Username: cred.Username, Token: token}, nil
}

// IssueToken signs an HS256 token for the user.
func (s *SessionService) IssueToken(userID, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token and returns the session it
// identifies. The token itself is kept for calls to the REST API.
func (s *SessionService) ValidateToken(tokenString string) (models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Session{}, fmt.Errorf("invalid token")
	}
	userID := claimString(claims["user_id"])
	if userID == "" {
		return models.Session{}, fmt.Errorf("invalid token: missing user_id")
	}
	return models.Session{
		UserID:   userID,
		Username: claimString(claims["username"]),
		Token:    tokenString,
	}, nil
}

// claimString accepts string and numeric claims; user ids issued by the
// order API are numbers.
func claimString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
