package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SalaryHandler serves the payroll endpoints.
type SalaryHandler struct {
	salaryService services.SalaryService
}

func NewSalaryHandler(ss services.SalaryService) *SalaryHandler {
	return &SalaryHandler{salaryService: ss}
}

func (h *SalaryHandler) CreateSalary(c *gin.Context) {
	var req services.CreateSalaryRequest
	if !bindJSON(c, &req, "CreateSalary") {
		return
	}

	salary, err := h.salaryService.CreateSalary(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create salary.")
		return
	}
	c.JSON(http.StatusCreated, salary)
}

func (h *SalaryHandler) GetSalaries(c *gin.Context) {
	var filters models.SalaryFilters
	if !bindQuery(c, &filters, "GetSalaries") {
		return
	}

	salaries, total, err := h.salaryService.GetSalaries(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch salaries.")
		return
	}
	if salaries == nil {
		salaries = []models.Salary{}
	}
	respondList(c, salaries, total, filters.Page, filters.PageSize)
}

func (h *SalaryHandler) GetSalaryByID(c *gin.Context) {
	id, ok := idParam(c, "id", "salary")
	if !ok {
		return
	}

	salary, err := h.salaryService.GetSalaryByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch salary.")
		return
	}
	c.JSON(http.StatusOK, salary)
}

// MarkSalaryPaid accepts an empty body; payment_date defaults to today.
func (h *SalaryHandler) MarkSalaryPaid(c *gin.Context) {
	id, ok := idParam(c, "id", "salary")
	if !ok {
		return
	}
	var req services.MarkSalaryPaidRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "MarkSalaryPaid") {
		return
	}

	salary, err := h.salaryService.MarkSalaryPaid(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to mark salary as paid.")
		return
	}
	c.JSON(http.StatusOK, salary)
}
