package services

import (
	"errors"
	"strings"
	"time"

	"dayrate/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const RefreshTokenTTL = 30 * 24 * time.Hour

var (
	ErrEmailTaken          = errors.New("email already in use")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type AuthUserRepository interface {
	FindByID(userID uint) (models.User, error)
	FindByNormalizedEmail(email string) (models.User, error)
	ExistsByNormalizedEmail(email string) (bool, error)
	Create(user *models.User) error
}

type AuthTokenRepository interface {
	Create(token *models.RefreshToken) error
	FindByToken(value string) (models.RefreshToken, bool, error)
	DeleteByID(tokenID uint) error
	DeleteByToken(value string) error
}

type AuthService struct {
	users  AuthUserRepository
	tokens AuthTokenRepository
}

func NewAuthService(users AuthUserRepository, tokens AuthTokenRepository) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	return service.users.FindByID(userID)
}

func (service *AuthService) FindByEmail(email string) (models.User, error) {
	return service.users.FindByNormalizedEmail(NormalizeEmail(email))
}

func (service *AuthService) EmailExists(email string) (bool, error) {
	return service.users.ExistsByNormalizedEmail(NormalizeEmail(email))
}

// CreateUser inserts the account; the unique email index settles a
// concurrent registration race.
func (service *AuthService) CreateUser(user *models.User) error {
	if err := service.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// IssueRefreshToken mints and persists a fresh opaque session token.
func (service *AuthService) IssueRefreshToken(userID uint, now time.Time) (models.RefreshToken, error) {
	token := models.RefreshToken{
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := service.tokens.Create(&token); err != nil {
		return models.RefreshToken{}, err
	}
	return token, nil
}

// RotateRefreshToken replaces a presented token with a new one. The old row
// is deleted first so a replayed token stops working immediately.
func (service *AuthService) RotateRefreshToken(value string, now time.Time) (models.RefreshToken, error) {
	stored, found, err := service.tokens.FindByToken(value)
	if err != nil {
		return models.RefreshToken{}, err
	}
	if !found || stored.ExpiresAt.Before(now) {
		return models.RefreshToken{}, ErrInvalidRefreshToken
	}

	if err := service.tokens.DeleteByID(stored.ID); err != nil {
		return models.RefreshToken{}, err
	}
	return service.IssueRefreshToken(stored.UserID, now)
}

func (service *AuthService) RevokeRefreshToken(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return service.tokens.DeleteByToken(value)
}
