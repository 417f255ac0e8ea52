package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meal_care_backend/internal/cache"
	"meal_care_backend/internal/models"
	"meal_care_backend/internal/policy"
	"meal_care_backend/internal/repositories"
	"meal_care_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	ErrUsernameExists      = fmt.Errorf("%w: username already exists", ErrConflict)
)

// --- Data Transfer Objects (DTOs) ---

// RegisterRequest creates a login and, for customers and employees, the matching profile.
type RegisterRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Role     string  `json:"role"` // customer (default) or employee
	Name     string  `json:"name"` // profile name, defaults to the username
	Contact  *string `json:"contact"`
	Position *string `json:"position"` // employees only
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// --- AuthService Interface ---
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.Credentials) (*models.TokenPair, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*models.TokenPair, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	Me(ctx context.Context, userID int64) (*models.CurrentUser, error)
	EnsureAdmin(ctx context.Context, username, password string) error
}

// --- authService Implementation ---
type authService struct {
	authRepo     repositories.AuthRepository
	customerRepo repositories.CustomerRepository
	employeeRepo repositories.EmployeeRepository
	tx           repositories.Transactor
	jwt          *utils.JWTManager
	blocklist    cache.TokenBlocklist
	policy       *policy.Policy
	bcryptCost   int
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	authRepo repositories.AuthRepository,
	customerRepo repositories.CustomerRepository,
	employeeRepo repositories.EmployeeRepository,
	tx repositories.Transactor,
	jwtManager *utils.JWTManager,
	blocklist cache.TokenBlocklist,
	pol *policy.Policy,
) AuthService {
	return &authService{
		authRepo:     authRepo,
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
		tx:           tx,
		jwt:          jwtManager,
		blocklist:    blocklist,
		policy:       pol,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

func (s *authService) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates the user and its profile row in one transaction.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 || len(username) > 50 {
		return nil, validationErrorf("username must be between 3 and 50 characters")
	}
	if len(req.Password) < 6 {
		return nil, validationErrorf("password must be at least 6 characters")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = models.RoleCustomer
	}
	if !utils.OneOf(role, models.RoleCustomer, models.RoleEmployee) {
		return nil, validationErrorf("role must be one of %s, %s", models.RoleCustomer, models.RoleEmployee)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = username
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, PasswordHash: hashed, Role: role}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		userID, err := s.authRepo.CreateUser(ctx, exec, user)
		if err != nil {
			return err
		}
		switch role {
		case models.RoleCustomer:
			_, err = s.customerRepo.CreateCustomer(ctx, exec, &models.Customer{
				UserID:  &userID,
				Name:    name,
				Contact: trimmedOrNil(req.Contact),
				Status:  "active",
			})
		case models.RoleEmployee:
			position := "staff"
			if p := trimmedOrNil(req.Position); p != nil {
				position = *p
			}
			contact := ""
			if c := trimmedOrNil(req.Contact); c != nil {
				contact = *c
			}
			_, err = s.employeeRepo.CreateEmployee(ctx, exec, &models.Employee{
				UserID:   &userID,
				Name:     name,
				Position: position,
				Contact:  contact,
				Status:   "active",
			})
		}
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	utils.LogInfo("User registered", map[string]interface{}{"user_id": user.ID, "role": role})
	return user, nil
}

func (s *authService) issueTokens(user *models.User) (*models.TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwt.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// Login handles user login and token generation.
func (s *authService) Login(ctx context.Context, req models.Credentials) (*models.TokenPair, error) {
	user, err := s.authRepo.FindUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

// RefreshToken exchanges a valid refresh token for a fresh token pair.
func (s *authService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*models.TokenPair, error) {
	claims, err := s.jwt.ValidateToken(req.RefreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	revoked, err := s.blocklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.authRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load user for refresh: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}
	return s.issueTokens(user)
}

// Logout revokes the presented access token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return ErrUnauthorized
	}
	if err := s.blocklist.Revoke(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*models.CurrentUser, error) {
	user, err := s.authRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	return &models.CurrentUser{User: user, Permissions: s.policy.Permissions(user.Role)}, nil
}

// EnsureAdmin creates the bootstrap administrator when the username is free.
func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.authRepo.FindUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	hashed, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{Username: username, PasswordHash: hashed, Role: models.RoleAdmin}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.authRepo.CreateUser(ctx, exec, admin)
		return err
	})
	if err != nil && !errors.Is(err, repositories.ErrDuplicateKey) {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	utils.LogInfo("Default admin user ensured", map[string]interface{}{"username": username})
	return nil
}
