package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/repositories"
	"meal_care_backend/pkg/utils"
)

var (
	ErrSalaryNotFound    = fmt.Errorf("salary %w", ErrNotFound)
	ErrSalaryExists      = fmt.Errorf("%w: a salary for this employee and period already exists", ErrConflict)
	ErrSalaryAlreadyPaid = fmt.Errorf("%w: salary is already paid", ErrConflict)
)

// CreateSalaryRequest: money fields default to 0 when absent.
type CreateSalaryRequest struct {
	EmployeeID *int64   `json:"employee_id" binding:"required"`
	Year       *int     `json:"year" binding:"required"`
	Month      *int     `json:"month" binding:"required"`
	BaseSalary *float64 `json:"base_salary"`
	Allowance  *float64 `json:"allowance"`
	Bonus      *float64 `json:"bonus"`
	Deduction  *float64 `json:"deduction"`
}

type MarkSalaryPaidRequest struct {
	PaymentDate *string `json:"payment_date"` // YYYY-MM-DD, defaults to today
}

type SalaryService interface {
	CreateSalary(ctx context.Context, req CreateSalaryRequest) (*models.Salary, error)
	GetSalaryByID(ctx context.Context, id int64) (*models.Salary, error)
	GetSalaries(ctx context.Context, filters models.SalaryFilters) ([]models.Salary, int, error)
	MarkSalaryPaid(ctx context.Context, id int64, req MarkSalaryPaidRequest) (*models.Salary, error)
}

type salaryService struct {
	salaryRepo      repositories.SalaryRepository
	transactionRepo repositories.TransactionRepository
	tx              repositories.Transactor
	now             func() time.Time
}

func NewSalaryService(salaryRepo repositories.SalaryRepository, transactionRepo repositories.TransactionRepository, tx repositories.Transactor) SalaryService {
	return &salaryService{salaryRepo: salaryRepo, transactionRepo: transactionRepo, tx: tx, now: time.Now}
}

// NetSalary is base + allowance + bonus - deduction, rounded to cents.
func NetSalary(base, allowance, bonus, deduction float64) float64 {
	return utils.RoundMoney(base + allowance + bonus - deduction)
}

func moneyField(name string, value *float64) (float64, error) {
	if value == nil {
		return 0, nil
	}
	if *value < 0 {
		return 0, validationErrorf("%s cannot be negative", name)
	}
	return utils.RoundMoney(*value), nil
}

func (s *salaryService) CreateSalary(ctx context.Context, req CreateSalaryRequest) (*models.Salary, error) {
	if req.EmployeeID == nil || *req.EmployeeID <= 0 {
		return nil, validationErrorf("employee_id is required")
	}
	if req.Year == nil {
		return nil, validationErrorf("year is required")
	}
	if *req.Year < 2000 || *req.Year > 9999 {
		return nil, validationErrorf("year is out of range")
	}
	if req.Month == nil {
		return nil, validationErrorf("month is required")
	}
	if *req.Month < 1 || *req.Month > 12 {
		return nil, validationErrorf("month must be between 1 and 12")
	}

	salary := &models.Salary{
		EmployeeID: *req.EmployeeID,
		Year:       *req.Year,
		Month:      *req.Month,
		PayPeriod:  fmt.Sprintf("%04d-%02d", *req.Year, *req.Month),
		Status:     models.SalaryPending,
	}
	var err error
	if salary.BaseSalary, err = moneyField("base_salary", req.BaseSalary); err != nil {
		return nil, err
	}
	if salary.Allowance, err = moneyField("allowance", req.Allowance); err != nil {
		return nil, err
	}
	if salary.Bonus, err = moneyField("bonus", req.Bonus); err != nil {
		return nil, err
	}
	if salary.Deduction, err = moneyField("deduction", req.Deduction); err != nil {
		return nil, err
	}
	salary.NetSalary = NetSalary(salary.BaseSalary, salary.Allowance, salary.Bonus, salary.Deduction)

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.salaryRepo.CreateSalary(ctx, exec, salary)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrSalaryExists
		}
		return nil, fmt.Errorf("failed to create salary: %w", referenceError(err, ErrEmployeeNotFound, nil))
	}

	utils.LogInfo("Salary created", map[string]interface{}{"salary_id": salary.ID, "employee_id": salary.EmployeeID, "pay_period": salary.PayPeriod, "net_salary": salary.NetSalary})
	return salary, nil
}

func (s *salaryService) GetSalaryByID(ctx context.Context, id int64) (*models.Salary, error) {
	salary, err := s.salaryRepo.GetSalaryByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSalaryNotFound
		}
		return nil, fmt.Errorf("failed to get salary: %w", err)
	}
	return salary, nil
}

func (s *salaryService) GetSalaries(ctx context.Context, filters models.SalaryFilters) ([]models.Salary, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	if filters.Month != nil && (*filters.Month < 1 || *filters.Month > 12) {
		return nil, 0, validationErrorf("month must be between 1 and 12")
	}
	salaries, total, err := s.salaryRepo.GetSalaries(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get salaries: %w", err)
	}
	return salaries, total, nil
}

// MarkSalaryPaid sets status paid and the payment date, and books net_salary as an
// employee expense. net_salary is left untouched.
func (s *salaryService) MarkSalaryPaid(ctx context.Context, id int64, req MarkSalaryPaidRequest) (*models.Salary, error) {
	if err := validateDate("payment_date", req.PaymentDate); err != nil {
		return nil, err
	}
	paymentDate := s.now().Format(dateLayout)
	if d := trimmedOrNil(req.PaymentDate); d != nil {
		paymentDate = *d
	}

	current, err := s.GetSalaryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.SalaryPaid {
		return nil, ErrSalaryAlreadyPaid
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.salaryRepo.MarkSalaryPaid(ctx, exec, id, paymentDate); err != nil {
			return err
		}
		relatedType := models.RelatedEmployee
		return recordLedger(ctx, exec, s.transactionRepo, &models.Transaction{
			Type:            models.TransactionExpense,
			Category:        models.CategorySalary,
			Amount:          current.NetSalary,
			Description:     utils.NewNullString("Salary " + current.PayPeriod),
			TransactionDate: paymentDate,
			RelatedID:       &current.EmployeeID,
			RelatedType:     &relatedType,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// paid concurrently between the read and the guarded update
			return nil, ErrSalaryAlreadyPaid
		}
		return nil, fmt.Errorf("failed to mark salary paid: %w", err)
	}
	return s.GetSalaryByID(ctx, id)
}
