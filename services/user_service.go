package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
}

// UserService handles staff accounts and their access tokens.
type UserService struct {
	DB        *gorm.DB
	Tokens    *TokenManager
	Blacklist Blacklist
}

func NewUserService(db *gorm.DB, tokens *TokenManager, blacklist Blacklist) *UserService {
	return &UserService{DB: db, Tokens: tokens, Blacklist: blacklist}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" {
		return nil, ErrInvalidCredentials
	}
	if !models.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Phone:    in.Phone,
		Password: string(hashed),
		Role:     in.Role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Login checks the password and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.Tokens.Generate(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return &user, token, expiresAt, nil
}

// Logout revokes token. Tokens that no longer parse need no revocation.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil
	}
	return s.Blacklist.Add(ctx, token, claims.ExpiresAt.Time)
}

// Authenticate verifies token and that it has not been revoked.
func (s *UserService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.Blacklist.Contains(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentSession resolves token into the login event of its still-existing user.
func (s *UserService) CurrentSession(ctx context.Context, token string) (session.LoginSucceeded, error) {
	if token == "" {
		return session.LoginSucceeded{}, session.ErrNoSession
	}
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return session.LoginSucceeded{}, err
	}
	user, err := s.GetByID(ctx, claims.UserID)
	if err != nil {
		return session.LoginSucceeded{}, fmt.Errorf("load session user: %w", err)
	}
	return session.LoginSucceeded{
		Profile: &session.Profile{Name: user.Name, Role: user.Role},
		Token:   token,
	}, nil
}

// TokenFetcher resolves a client's session from the access token it carried
// when it first mounted.
type TokenFetcher struct {
	Users *UserService
	Token string
}

func (f TokenFetcher) FetchSession(ctx context.Context) (session.LoginSucceeded, error) {
	return f.Users.CurrentSession(ctx, f.Token)
}
