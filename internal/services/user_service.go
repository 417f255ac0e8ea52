package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/policy"
	"meal_care_backend/internal/repositories"
	"meal_care_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserForbidden = fmt.Errorf("%w: only user administrators may change other accounts, roles or activation", ErrForbidden)
	ErrSelfModify    = fmt.Errorf("%w: you cannot change the role or activation of your own account", ErrConflict)
	ErrSelfDelete    = fmt.Errorf("%w: you cannot delete your own account", ErrConflict)
)

// Actor is the authenticated caller of a user-management operation.
type Actor struct {
	UserID int64
	Role   string
}

// UpdateUserRequest: any user may change their own username and password. Role and
// is_active, and every field of another account, need the users:write permission.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

type UserService interface {
	GetUsers(ctx context.Context, filters models.UserFilters) ([]models.User, int, error)
	GetUserByID(ctx context.Context, id int64) (*models.UserDetail, error)
	UpdateUser(ctx context.Context, actor Actor, id int64, req UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, actor Actor, id int64) error
}

type userService struct {
	authRepo     repositories.AuthRepository
	customerRepo repositories.CustomerRepository
	employeeRepo repositories.EmployeeRepository
	tx           repositories.Transactor
	policy       *policy.Policy
	bcryptCost   int
}

func NewUserService(
	authRepo repositories.AuthRepository,
	customerRepo repositories.CustomerRepository,
	employeeRepo repositories.EmployeeRepository,
	tx repositories.Transactor,
	pol *policy.Policy,
) UserService {
	return &userService{
		authRepo:     authRepo,
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
		tx:           tx,
		policy:       pol,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

func (s *userService) GetUsers(ctx context.Context, filters models.UserFilters) ([]models.User, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	users, total, err := s.authRepo.GetUsers(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users: %w", err)
	}
	return users, total, nil
}

func (s *userService) findUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByID returns the account with its linked customer or employee profile, if any.
func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.UserDetail, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.UserDetail{User: user}

	customers, _, err := s.customerRepo.GetCustomers(ctx, models.CustomerFilters{UserID: &id, Page: 1, PageSize: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to get customer profile: %w", err)
	}
	if len(customers) > 0 {
		detail.Customer = &customers[0]
	}
	employees, _, err := s.employeeRepo.GetEmployees(ctx, models.EmployeeFilters{UserID: &id, Page: 1, PageSize: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to get employee profile: %w", err)
	}
	if len(employees) > 0 {
		detail.Employee = &employees[0]
	}
	return detail, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, id int64, req UpdateUserRequest) (*models.User, error) {
	admin := s.policy.Allows(actor.Role, policy.UsersWrite)
	self := actor.UserID == id
	switch {
	case !self && !admin:
		return nil, ErrUserForbidden
	case (req.Role != nil || req.IsActive != nil) && !admin:
		return nil, ErrUserForbidden
	case self && (req.Role != nil || req.IsActive != nil):
		return nil, ErrSelfModify
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len(username) < 3 || len(username) > 50 {
			return nil, validationErrorf("username must be between 3 and 50 characters")
		}
		user.Username = username
	}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if !s.policy.HasRole(role) {
			return nil, validationErrorf("role %q is not defined by the access policy", role)
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	var passwordHash string
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, validationErrorf("password must be at least 6 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = string(hashed)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.authRepo.UpdateUser(ctx, exec, user); err != nil {
			return err
		}
		if passwordHash == "" {
			return nil
		}
		return s.authRepo.UpdatePassword(ctx, exec, id, passwordHash)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	utils.LogInfo("User updated", map[string]interface{}{"user_id": id, "actor_id": actor.UserID, "password_changed": passwordHash != ""})
	return user, nil
}

// DeleteUser removes an account. Linked customer and employee profiles are kept.
func (s *userService) DeleteUser(ctx context.Context, actor Actor, id int64) error {
	if actor.UserID == id {
		return ErrSelfDelete
	}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.authRepo.DeleteUser(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	utils.LogInfo("User deleted", map[string]interface{}{"user_id": id, "actor_id": actor.UserID})
	return nil
}
