package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BuzzLyutic/crm-api/internal/model"
	"github.com/BuzzLyutic/crm-api/internal/repo"
)

// missingUserHash is compared against when the email is unknown. It is a
// well-formed bcrypt hash at the default cost that belongs to no account.
const missingUserHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
	ExpiresIn() int64
}

type PasswordVerifier interface {
	Verify(password, hash string) bool
}

type LoginResult struct {
	AccessToken string     `json:"accessToken"`
	ExpiresIn   int64      `json:"expiresIn"`
	User        model.User `json:"user"`
}

type AuthService struct {
	users     repo.UserRepository
	passwords PasswordVerifier
	tokens    TokenIssuer
}

func NewAuthService(users repo.UserRepository, passwords PasswordVerifier, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
	}
}

// Login checks the credentials and returns a bearer token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrorNotFound) {
		// Spend the same hashing time as a wrong password would.
		s.passwords.Verify(password, missingUserHash)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	return LoginResult{
		AccessToken: "Bearer " + token,
		ExpiresIn:   s.tokens.ExpiresIn(),
		User:        user,
	}, nil
}
