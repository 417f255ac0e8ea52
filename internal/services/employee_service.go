package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/repositories"
	"meal_care_backend/pkg/utils"
)

var ErrEmployeeInUse = fmt.Errorf("%w: employee cannot be deleted as they are referenced by salaries or orders", ErrConflict)

type CreateEmployeeRequest struct {
	Name            string   `json:"name" binding:"required"`
	Position        string   `json:"position" binding:"required"`
	Contact         string   `json:"contact" binding:"required"`
	BaseSalary      *float64 `json:"base_salary"`
	JoiningDate     *string  `json:"joining_date"` // Format YYYY-MM-DD
	Education       *string  `json:"education"`
	WorkExperience  *string  `json:"work_experience"`
	WorkPerformance *string  `json:"work_performance"`
}

type UpdateEmployeeRequest struct {
	Name            *string  `json:"name"`
	Position        *string  `json:"position"`
	Contact         *string  `json:"contact"`
	BaseSalary      *float64 `json:"base_salary"`
	JoiningDate     *string  `json:"joining_date"`
	Education       *string  `json:"education"`
	WorkExperience  *string  `json:"work_experience"`
	WorkPerformance *string  `json:"work_performance"`
	Status          *string  `json:"status"`
}

type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error)
	GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error)
	GetEmployees(ctx context.Context, filters models.EmployeeFilters) ([]models.Employee, int, error)
	UpdateEmployee(ctx context.Context, id int64, req UpdateEmployeeRequest) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
}

type employeeService struct {
	employeeRepo repositories.EmployeeRepository
	tx           repositories.Transactor
}

func NewEmployeeService(repo repositories.EmployeeRepository, tx repositories.Transactor) EmployeeService {
	return &employeeService{employeeRepo: repo, tx: tx}
}

func validateEmployee(e *models.Employee) error {
	switch {
	case utils.IsEmpty(e.Name):
		return validationErrorf("name cannot be empty")
	case utils.IsEmpty(e.Position):
		return validationErrorf("position cannot be empty")
	case utils.IsEmpty(e.Contact):
		return validationErrorf("contact cannot be empty")
	case e.BaseSalary < 0:
		return validationErrorf("base_salary cannot be negative")
	case !utils.OneOf(e.Status, profileStatuses...):
		return validationErrorf("status must be one of %s", strings.Join(profileStatuses, ", "))
	}
	return validateDate("joining_date", e.JoiningDate)
}

func (s *employeeService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	employee := &models.Employee{
		Name:            strings.TrimSpace(req.Name),
		Position:        strings.TrimSpace(req.Position),
		Contact:         strings.TrimSpace(req.Contact),
		JoiningDate:     trimmedOrNil(req.JoiningDate),
		Education:       req.Education,
		WorkExperience:  req.WorkExperience,
		WorkPerformance: req.WorkPerformance,
		Status:          "active",
	}
	if req.BaseSalary != nil {
		employee.BaseSalary = utils.RoundMoney(*req.BaseSalary)
	}
	if err := validateEmployee(employee); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.employeeRepo.CreateEmployee(ctx, exec, employee)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return employee, nil
}

func (s *employeeService) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetEmployeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by ID: %w", err)
	}
	return employee, nil
}

func (s *employeeService) GetEmployees(ctx context.Context, filters models.EmployeeFilters) ([]models.Employee, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	employees, total, err := s.employeeRepo.GetEmployees(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get employees: %w", err)
	}
	return employees, total, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, id int64, req UpdateEmployeeRequest) (*models.Employee, error) {
	employee, err := s.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		employee.Name = strings.TrimSpace(*req.Name)
	}
	if req.Position != nil {
		employee.Position = strings.TrimSpace(*req.Position)
	}
	if req.Contact != nil {
		employee.Contact = strings.TrimSpace(*req.Contact)
	}
	if req.BaseSalary != nil {
		employee.BaseSalary = utils.RoundMoney(*req.BaseSalary)
	}
	if req.JoiningDate != nil {
		employee.JoiningDate = trimmedOrNil(req.JoiningDate)
	}
	if req.Education != nil {
		employee.Education = req.Education
	}
	if req.WorkExperience != nil {
		employee.WorkExperience = req.WorkExperience
	}
	if req.WorkPerformance != nil {
		employee.WorkPerformance = req.WorkPerformance
	}
	if req.Status != nil {
		employee.Status = *req.Status
	}
	if err := validateEmployee(employee); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.employeeRepo.UpdateEmployee(ctx, exec, employee)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return employee, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.employeeRepo.DeleteEmployee(ctx, exec, id)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrEmployeeNotFound
	case errors.Is(err, repositories.ErrForeignKeyViolation):
		return ErrEmployeeInUse
	default:
		return fmt.Errorf("failed to delete employee: %w", err)
	}
}
