package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// EmployeeHandler holds the employee service.
type EmployeeHandler struct {
	employeeService services.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(s services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: s}
}

// CreateEmployee handles employee creation.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if !bindJSON(c, &req, "CreateEmployee") {
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create employee.")
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// GetEmployees handles fetching employees with filters and pagination.
func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	var filters models.EmployeeFilters
	if !bindQuery(c, &filters, "GetEmployees") {
		return
	}

	employees, total, err := h.employeeService.GetEmployees(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch employees.")
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	respondList(c, employees, total, filters.Page, filters.PageSize)
}

func (h *EmployeeHandler) GetEmployeeByID(c *gin.Context) {
	id, ok := idParam(c, "id", "employee")
	if !ok {
		return
	}

	employee, err := h.employeeService.GetEmployeeByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch employee.")
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id, ok := idParam(c, "id", "employee")
	if !ok {
		return
	}
	var req services.UpdateEmployeeRequest
	if !bindJSON(c, &req, "UpdateEmployee") {
		return
	}

	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update employee.")
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id, ok := idParam(c, "id", "employee")
	if !ok {
		return
	}

	if err := h.employeeService.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete employee.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
