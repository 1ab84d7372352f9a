package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/mail"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/validation"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrInvalidToken         = errors.New("invalid session token")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

const (
	bcryptCost        = 12
	resetTokenBytes   = 32
	tokenIssuer       = "trainlog"
	defaultSessionTTL = 30 * 24 * time.Hour
	defaultResetTTL   = time.Hour
)

// Claims is the payload of a session token.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, req validation.SignupRequest) (*domain.User, error)
	Login(ctx context.Context, req validation.LoginRequest) (token string, user *domain.User, err error)
	ParseToken(token string) (*Claims, error)
	CurrentUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	// RequestPasswordReset never reports whether the account exists; failures are only logged.
	RequestPasswordReset(ctx context.Context, req validation.ForgotPasswordRequest)
	ResetPassword(ctx context.Context, req validation.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID primitive.ObjectID, req validation.ChangePasswordRequest) error
}

// AuthConfig carries the settings of the auth service.
type AuthConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	// BaseURL is prefixed to reset links, e.g. https://trainlog.example
	BaseURL string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo repository.UserRepository
	mailer   mail.Mailer
	cfg      AuthConfig

	now           func() time.Time
	newResetToken func() (string, error)
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, mailer mail.Mailer, cfg AuthConfig) AuthService {
	if cfg.JWTSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTTL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &authService{
		userRepo:      userRepo,
		mailer:        mailer,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
		newResetToken: randomToken,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account. Emails are stored lowercased.
func (s *authService) Signup(ctx context.Context, req validation.SignupRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		// Another request may have registered the email since the lookup.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *authService) Login(ctx context.Context, req validation.LoginRequest) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}
	if user.PasswordHash == "" {
		return "", nil, ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		log.WithError(err).Error("sign session token")
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req validation.ForgotPasswordRequest) {
	email := normalizeEmail(req.Email)
	logger := log.WithField("email", email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.WithError(err).Error("password reset: look up user")
		}
		return
	}

	raw, err := s.newResetToken()
	if err != nil {
		logger.WithError(err).Error("password reset: generate token")
		return
	}

	expiry := s.now().Add(s.cfg.ResetTokenTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, hashToken(raw), expiry); err != nil {
		logger.WithError(err).Error("password reset: store token")
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.cfg.BaseURL, raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		logger.WithError(err).Error("password reset: send email")
	}
}

// ResetPassword consumes a reset token. A token works once: the new password
// write also clears it.
func (s *authService) ResetPassword(ctx context.Context, req validation.ResetPasswordRequest) error {
	user, err := s.userRepo.GetByResetToken(ctx, hashToken(req.Token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return s.setPassword(ctx, user.ID, req.Password)
}

func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req validation.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, userID, req.Password)
}

func (s *authService) setPassword(ctx context.Context, userID primitive.ObjectID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return ErrHashingFailed
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

// --- JWT Helpers ---

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

// ParseToken validates signature and expiry and returns the claims.
func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// randomToken returns 32 random bytes, hex encoded.
func randomToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken is how reset tokens are stored: sha256, hex encoded.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
