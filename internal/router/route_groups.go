package router

import (
	"meal_care_backend/internal/handlers"
	"meal_care_backend/internal/middleware"
	"meal_care_backend/internal/policy"

	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.OrdersRead)
	write := middleware.RequirePermission(pol, policy.OrdersWrite)

	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.POST("", write, orderHandler.CreateOrder)
		orderRoutes.GET("", read, orderHandler.GetOrders)
		orderRoutes.GET("/:id", read, orderHandler.GetOrderByID)
		orderRoutes.PUT("/:id", write, orderHandler.UpdateOrder)
		orderRoutes.DELETE("/:id", write, orderHandler.DeleteOrder)
		orderRoutes.POST("/:id/items", write, orderHandler.AddOrderItem)
		orderRoutes.DELETE("/:id/items/:itemId", write, orderHandler.RemoveOrderItem)
		orderRoutes.POST("/:id/pay", write, orderHandler.PayOrder)
	}
}

// SetupPurchaseOrderRoutes sets up the purchase order routes.
func SetupPurchaseOrderRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.PurchaseOrderHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.PurchaseOrdersRead)
	write := middleware.RequirePermission(pol, policy.PurchaseOrdersWrite)

	poRoutes := authenticatedGroup.Group("/financial/purchase-orders")
	{
		poRoutes.POST("", write, h.CreatePurchaseOrder)
		poRoutes.GET("", read, h.GetPurchaseOrders)
		poRoutes.GET("/:id", read, h.GetPurchaseOrderByID)
		poRoutes.PATCH("/:id/status", write, h.UpdatePurchaseOrderStatus)
		poRoutes.DELETE("/:id", write, h.DeletePurchaseOrder)
	}
}

// SetupSalaryRoutes sets up the salary routes.
func SetupSalaryRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.SalaryHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.SalariesRead)
	write := middleware.RequirePermission(pol, policy.SalariesWrite)

	salaryRoutes := authenticatedGroup.Group("/financial/salaries")
	{
		salaryRoutes.POST("", write, h.CreateSalary)
		salaryRoutes.GET("", read, h.GetSalaries)
		salaryRoutes.GET("/:id", read, h.GetSalaryByID)
		salaryRoutes.PATCH("/:id/pay", write, h.MarkSalaryPaid)
	}
}

// SetupCustomerRoutes sets up the customer routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.CustomerHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.CustomersRead)
	write := middleware.RequirePermission(pol, policy.CustomersWrite)

	customerRoutes := authenticatedGroup.Group("/customers")
	{
		customerRoutes.POST("", write, h.CreateCustomer)
		customerRoutes.GET("", read, h.GetCustomers)
		customerRoutes.GET("/:id", read, h.GetCustomerByID)
		customerRoutes.PUT("/:id", write, h.UpdateCustomer)
		customerRoutes.DELETE("/:id", write, h.DeleteCustomer)
	}
}

// SetupEmployeeRoutes sets up the employee routes.
func SetupEmployeeRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.EmployeeHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.EmployeesRead)
	write := middleware.RequirePermission(pol, policy.EmployeesWrite)

	employeeRoutes := authenticatedGroup.Group("/employees")
	{
		employeeRoutes.POST("", write, h.CreateEmployee)
		employeeRoutes.GET("", read, h.GetEmployees)
		employeeRoutes.GET("/:id", read, h.GetEmployeeByID)
		employeeRoutes.PUT("/:id", write, h.UpdateEmployee)
		employeeRoutes.DELETE("/:id", write, h.DeleteEmployee)
	}
}

// SetupSupplierRoutes sets up the supplier routes.
func SetupSupplierRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.SupplierHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.SuppliersRead)
	write := middleware.RequirePermission(pol, policy.SuppliersWrite)

	supplierRoutes := authenticatedGroup.Group("/suppliers")
	{
		supplierRoutes.POST("", write, h.CreateSupplier)
		supplierRoutes.GET("", read, h.GetSuppliers)
		supplierRoutes.GET("/:id", read, h.GetSupplierByID)
		supplierRoutes.PUT("/:id", write, h.UpdateSupplier)
		supplierRoutes.DELETE("/:id", write, h.DeleteSupplier)
	}
}

// SetupIngredientRoutes sets up the ingredient routes. /categories is registered
// before /:id so it is not read as an id.
func SetupIngredientRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.IngredientHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.IngredientsRead)
	write := middleware.RequirePermission(pol, policy.IngredientsWrite)

	ingredientRoutes := authenticatedGroup.Group("/ingredients")
	{
		ingredientRoutes.GET("/categories", read, h.GetCategories)
		ingredientRoutes.POST("", write, h.CreateIngredient)
		ingredientRoutes.GET("", read, h.GetIngredients)
		ingredientRoutes.GET("/:id", read, h.GetIngredientByID)
		ingredientRoutes.PUT("/:id", write, h.UpdateIngredient)
		ingredientRoutes.PATCH("/:id/stock", write, h.AdjustStock)
		ingredientRoutes.DELETE("/:id", write, h.DeleteIngredient)
	}
}

// SetupDishRoutes sets up the dish routes. /categories and /check-restrictions are
// registered before /:id.
func SetupDishRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.DishHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.DishesRead)
	write := middleware.RequirePermission(pol, policy.DishesWrite)

	dishRoutes := authenticatedGroup.Group("/dishes")
	{
		dishRoutes.GET("/categories", read, h.GetCategories)
		dishRoutes.POST("/check-restrictions", read, h.CheckRestrictions)
		dishRoutes.POST("", write, h.CreateDish)
		dishRoutes.GET("", read, h.GetDishes)
		dishRoutes.GET("/:id", read, h.GetDishByID)
		dishRoutes.PUT("/:id", write, h.UpdateDish)
		dishRoutes.DELETE("/:id", write, h.DeleteDish)
	}
}

// SetupMenuRoutes sets up the menu routes, including the menu-dish composition.
func SetupMenuRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.MenuHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.MenusRead)
	write := middleware.RequirePermission(pol, policy.MenusWrite)

	menuRoutes := authenticatedGroup.Group("/menus")
	{
		menuRoutes.POST("", write, h.CreateMenu)
		menuRoutes.GET("", read, h.GetMenus)
		menuRoutes.GET("/:id", read, h.GetMenuByID)
		menuRoutes.PUT("/:id", write, h.UpdateMenu)
		menuRoutes.DELETE("/:id", write, h.DeleteMenu)
		menuRoutes.POST("/:id/dishes", write, h.AddDish)
		menuRoutes.DELETE("/:id/dishes/:dishId", write, h.RemoveDish)
	}
}

// SetupTransactionRoutes sets up the financial ledger routes.
func SetupTransactionRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.TransactionHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.TransactionsRead)
	write := middleware.RequirePermission(pol, policy.TransactionsWrite)

	txnRoutes := authenticatedGroup.Group("/financial/transactions")
	{
		txnRoutes.POST("", write, h.CreateTransaction)
		txnRoutes.GET("", read, h.GetTransactions)
		txnRoutes.GET("/:id", read, h.GetTransactionByID)
	}
}

// SetupUserRoutes sets up the user management routes. PUT /:id only needs an authenticated
// caller: users may edit their own account and the service checks everything else.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.UserHandler, pol *policy.Policy) {
	read := middleware.RequirePermission(pol, policy.UsersRead)
	write := middleware.RequirePermission(pol, policy.UsersWrite)

	userRoutes := authenticatedGroup.Group("/users")
	{
		userRoutes.GET("", read, h.GetUsers)
		userRoutes.GET("/:id", read, h.GetUserByID)
		userRoutes.PUT("/:id", h.UpdateUser)
		userRoutes.DELETE("/:id", write, h.DeleteUser)
	}
}

func SetupSystemRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.SystemHandler, pol *policy.Policy) {
	authenticatedGroup.GET("/system/permissions", middleware.RequirePermission(pol, policy.SystemRead), h.GetPermissions)
}
