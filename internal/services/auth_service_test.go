package services

import (
	"errors"
	"testing"
	"time"

	"dayrate/internal/models"
	"gorm.io/gorm"
)

type stubUserRepository struct {
	users     map[uint]models.User
	byEmail   map[string]models.User
	createErr error
	nextID    uint
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{users: map[uint]models.User{}, byEmail: map[string]models.User{}}
}

func (stub *stubUserRepository) FindByID(userID uint) (models.User, error) {
	user, found := stub.users[userID]
	if !found {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubUserRepository) FindByNormalizedEmail(email string) (models.User, error) {
	user, found := stub.byEmail[email]
	if !found {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubUserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	_, found := stub.byEmail[email]
	return found, nil
}

func (stub *stubUserRepository) Create(user *models.User) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	stub.nextID++
	user.ID = stub.nextID
	stub.users[user.ID] = *user
	stub.byEmail[NormalizeEmail(user.Email)] = *user
	return nil
}

type stubTokenRepository struct {
	tokens map[string]models.RefreshToken
	nextID uint
}

func newStubTokenRepository() *stubTokenRepository {
	return &stubTokenRepository{tokens: map[string]models.RefreshToken{}}
}

func (stub *stubTokenRepository) Create(token *models.RefreshToken) error {
	stub.nextID++
	token.ID = stub.nextID
	stub.tokens[token.Token] = *token
	return nil
}

func (stub *stubTokenRepository) FindByToken(value string) (models.RefreshToken, bool, error) {
	token, found := stub.tokens[value]
	return token, found, nil
}

func (stub *stubTokenRepository) DeleteByID(tokenID uint) error {
	for value, token := range stub.tokens {
		if token.ID == tokenID {
			delete(stub.tokens, value)
		}
	}
	return nil
}

func (stub *stubTokenRepository) DeleteByToken(value string) error {
	delete(stub.tokens, value)
	return nil
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Alice@Example.COM ": "alice@example.com",
		"bob@example.com":      "bob@example.com",
		"  ":                   "",
	}
	for input, want := range cases {
		if got := NormalizeEmail(input); got != want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCreateUserTranslatesDuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newStubUserRepository()
	users.createErr = gorm.ErrDuplicatedKey
	service := NewAuthService(users, newStubTokenRepository())

	err := service.CreateUser(&models.User{Name: "Alice", Email: "alice@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateUser() error = %v, want ErrEmailTaken", err)
	}
}

func TestIssueRefreshTokenSetsExpiry(t *testing.T) {
	t.Parallel()

	service := NewAuthService(newStubUserRepository(), newStubTokenRepository())
	now := mustParseDay(t, "2024-06-15")

	token, err := service.IssueRefreshToken(7, now)
	if err != nil {
		t.Fatalf("IssueRefreshToken() unexpected error: %v", err)
	}
	if token.Token == "" {
		t.Fatal("expected a non-empty token value")
	}
	if token.UserID != 7 {
		t.Fatalf("token user = %d, want 7", token.UserID)
	}
	if want := now.Add(RefreshTokenTTL); !token.ExpiresAt.Equal(want) {
		t.Fatalf("token expiry = %v, want %v", token.ExpiresAt, want)
	}
}

func TestRotateRefreshTokenRejectsUnknownToken(t *testing.T) {
	t.Parallel()

	service := NewAuthService(newStubUserRepository(), newStubTokenRepository())
	if _, err := service.RotateRefreshToken("no-such-token", mustParseDay(t, "2024-06-15")); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("RotateRefreshToken() error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRotateRefreshTokenRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	tokens := newStubTokenRepository()
	service := NewAuthService(newStubUserRepository(), tokens)
	issuedAt := mustParseDay(t, "2024-01-01")

	token, err := service.IssueRefreshToken(7, issuedAt)
	if err != nil {
		t.Fatalf("IssueRefreshToken() unexpected error: %v", err)
	}

	afterExpiry := issuedAt.Add(RefreshTokenTTL + time.Hour)
	if _, err := service.RotateRefreshToken(token.Token, afterExpiry); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("RotateRefreshToken() error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRotateRefreshTokenReplacesOldToken(t *testing.T) {
	t.Parallel()

	tokens := newStubTokenRepository()
	service := NewAuthService(newStubUserRepository(), tokens)
	now := mustParseDay(t, "2024-06-15")

	old, err := service.IssueRefreshToken(7, now)
	if err != nil {
		t.Fatalf("IssueRefreshToken() unexpected error: %v", err)
	}

	fresh, err := service.RotateRefreshToken(old.Token, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("RotateRefreshToken() unexpected error: %v", err)
	}
	if fresh.Token == old.Token {
		t.Fatal("rotation must mint a different token value")
	}
	if fresh.UserID != 7 {
		t.Fatalf("rotated token user = %d, want 7", fresh.UserID)
	}

	// A replay of the consumed token is rejected.
	if _, err := service.RotateRefreshToken(old.Token, now.Add(2*time.Hour)); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("replayed RotateRefreshToken() error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRevokeRefreshTokenIgnoresBlankValues(t *testing.T) {
	t.Parallel()

	tokens := newStubTokenRepository()
	service := NewAuthService(newStubUserRepository(), tokens)

	if err := service.RevokeRefreshToken("   "); err != nil {
		t.Fatalf("RevokeRefreshToken() unexpected error: %v", err)
	}

	token, err := service.IssueRefreshToken(7, mustParseDay(t, "2024-06-15"))
	if err != nil {
		t.Fatalf("IssueRefreshToken() unexpected error: %v", err)
	}
	if err := service.RevokeRefreshToken(token.Token); err != nil {
		t.Fatalf("RevokeRefreshToken() unexpected error: %v", err)
	}
	if _, found, _ := tokens.FindByToken(token.Token); found {
		t.Fatal("revoked token should be deleted")
	}
}
