package handlers

import (
	"net/http"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// TransactionHandler holds the financial ledger service.
type TransactionHandler struct {
	transactionService services.TransactionService
}

func NewTransactionHandler(s services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: s}
}

// CreateTransaction records a manual income or expense.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req services.CreateTransactionRequest
	if !bindJSON(c, &req, "CreateTransaction") {
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create transaction.")
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var filters models.TransactionFilters
	if !bindQuery(c, &filters, "GetTransactions") {
		return
	}

	transactions, total, err := h.transactionService.GetTransactions(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch transactions.")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	respondList(c, transactions, total, filters.Page, filters.PageSize)
}

func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	id, ok := idParam(c, "id", "transaction")
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch transaction.")
		return
	}
	c.JSON(http.StatusOK, txn)
}
