package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/openlearn/openlearn-backend/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service handles registration, login and token validation
type Service struct {
	users    repositories.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewService creates a new identity Service
func NewService(users repositories.UserRepository, secret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Register creates a new account. Only the student and author roles can
// be chosen at registration; admin accounts are provisioned out of
// band.
func (s *Service) Register(ctx context.Context, email, password, name string, role models.Role) (*models.User, error) {
	if email == "" {
		return nil, services.ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, services.ErrInvalidInput.WithDetail("field", "password")
	}
	if role != models.RoleStudent && role != models.RoleAuthor {
		return nil, services.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(email, string(hash), name, role)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.ErrDuplicateEmail
		}
		return nil, services.WrapInternal("failed to create user", err)
	}

	s.logger.Info("user registered",
		zap.String("id", user.ID.String()),
		zap.String("role", string(role)))
	return user, nil
}

// Login verifies the credentials and issues a signed session token.
// Unknown email and wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, services.ErrInvalidCredentials
		}
		return "", nil, services.WrapInternal("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, services.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, services.WrapInternal("failed to sign token", err)
	}

	s.logger.Info("user logged in", zap.String("id", user.ID.String()))
	return token, user, nil
}

// ValidateToken parses and verifies a session token and loads the
// principal it names
func (s *Service) ValidateToken(ctx context.Context, tokenStr string) (*models.User, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, services.ErrTokenExpired
		}
		return nil, services.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, services.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, services.ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, services.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Token outlived the account
			return nil, services.ErrInvalidToken
		}
		return nil, services.WrapInternal("failed to load user", err)
	}

	return user, nil
}

// issueToken signs an HS256 token naming the user
func (s *Service) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}
