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

var ErrCustomerInUse = fmt.Errorf("%w: customer cannot be deleted as they are referenced by orders", ErrConflict)

var (
	profileStatuses = []string{"active", "inactive"}
	genders         = []string{"male", "female", "other"}
)

// --- Customer DTOs ---
type CreateCustomerRequest struct {
	Name                string  `json:"name" binding:"required"`
	Age                 *int    `json:"age"`
	Gender              *string `json:"gender"`
	Contact             *string `json:"contact"`
	DeliveryDate        *string `json:"delivery_date"` // Format YYYY-MM-DD
	CheckInDate         *string `json:"check_in_date"`
	CheckOutDate        *string `json:"check_out_date"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	Preferences         *string `json:"preferences"`
}

type UpdateCustomerRequest struct {
	Name                *string `json:"name"`
	Age                 *int    `json:"age"`
	Gender              *string `json:"gender"`
	Contact             *string `json:"contact"`
	DeliveryDate        *string `json:"delivery_date"`
	CheckInDate         *string `json:"check_in_date"`
	CheckOutDate        *string `json:"check_out_date"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	Preferences         *string `json:"preferences"`
	Status              *string `json:"status"`
}

// --- CustomerService Interface ---
type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error)
	UpdateCustomer(ctx context.Context, id int64, req UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	tx           repositories.Transactor
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(repo repositories.CustomerRepository, tx repositories.Transactor) CustomerService {
	return &customerService{customerRepo: repo, tx: tx}
}

func validateCustomer(c *models.Customer) error {
	if utils.IsEmpty(c.Name) {
		return validationErrorf("name cannot be empty")
	}
	if c.Age != nil && (*c.Age < 0 || *c.Age > 150) {
		return validationErrorf("age is out of range")
	}
	if c.Gender != nil && !utils.OneOf(*c.Gender, genders...) {
		return validationErrorf("gender must be one of %s", strings.Join(genders, ", "))
	}
	if !utils.OneOf(c.Status, profileStatuses...) {
		return validationErrorf("status must be one of %s", strings.Join(profileStatuses, ", "))
	}
	for field, value := range map[string]*string{
		"delivery_date":  c.DeliveryDate,
		"check_in_date":  c.CheckInDate,
		"check_out_date": c.CheckOutDate,
	} {
		if err := validateDate(field, value); err != nil {
			return err
		}
	}
	if c.CheckInDate != nil && c.CheckOutDate != nil && *c.CheckOutDate < *c.CheckInDate {
		return validationErrorf("check_out_date cannot be before check_in_date")
	}
	return nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error) {
	customer := &models.Customer{
		Name:                strings.TrimSpace(req.Name),
		Age:                 req.Age,
		Gender:              trimmedOrNil(req.Gender),
		Contact:             trimmedOrNil(req.Contact),
		DeliveryDate:        trimmedOrNil(req.DeliveryDate),
		CheckInDate:         trimmedOrNil(req.CheckInDate),
		CheckOutDate:        trimmedOrNil(req.CheckOutDate),
		DietaryRestrictions: req.DietaryRestrictions,
		Preferences:         req.Preferences,
		Status:              "active",
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.customerRepo.CreateCustomer(ctx, exec, customer)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	customers, total, err := s.customerRepo.GetCustomers(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, total, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int64, req UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Age != nil {
		customer.Age = req.Age
	}
	if req.Gender != nil {
		customer.Gender = trimmedOrNil(req.Gender)
	}
	if req.Contact != nil {
		customer.Contact = trimmedOrNil(req.Contact)
	}
	if req.DeliveryDate != nil {
		customer.DeliveryDate = trimmedOrNil(req.DeliveryDate)
	}
	if req.CheckInDate != nil {
		customer.CheckInDate = trimmedOrNil(req.CheckInDate)
	}
	if req.CheckOutDate != nil {
		customer.CheckOutDate = trimmedOrNil(req.CheckOutDate)
	}
	if req.DietaryRestrictions != nil {
		customer.DietaryRestrictions = req.DietaryRestrictions
	}
	if req.Preferences != nil {
		customer.Preferences = req.Preferences
	}
	if req.Status != nil {
		customer.Status = *req.Status
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.customerRepo.UpdateCustomer(ctx, exec, customer)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.customerRepo.DeleteCustomer(ctx, exec, id)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrCustomerNotFound
	case errors.Is(err, repositories.ErrForeignKeyViolation):
		return ErrCustomerInUse
	default:
		return fmt.Errorf("failed to delete customer: %w", err)
	}
}
