package router

import (
	"database/sql"
	"net/http"

	"meal_care_backend/internal/cache"
	"meal_care_backend/internal/handlers"
	"meal_care_backend/internal/middleware"
	"meal_care_backend/internal/policy"
	"meal_care_backend/internal/repositories"
	"meal_care_backend/internal/services"
	"meal_care_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the process-wide objects built in main.
type Dependencies struct {
	DB                 *sql.DB
	JWT                *utils.JWTManager
	Blocklist          cache.TokenBlocklist
	Policy             *policy.Policy
	CORSAllowedOrigins []string
}

// Services groups every business service the routes dispatch to.
type Services struct {
	Auth          services.AuthService
	Orders        services.OrderService
	PurchaseOrder services.PurchaseOrderService
	Salaries      services.SalaryService
	Customers     services.CustomerService
	Employees     services.EmployeeService
	Suppliers     services.SupplierService
	Ingredients   services.IngredientService
	Dishes        services.DishService
	Menus         services.MenuService
	Transactions  services.TransactionService
	Users         services.UserService
}

// NewServices wires repositories into services over one shared Transactor.
func NewServices(deps Dependencies) Services {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(deps.DB)
	orderRepo := repositories.NewOrderRepository(deps.DB)
	purchaseOrderRepo := repositories.NewPurchaseOrderRepository(deps.DB)
	salaryRepo := repositories.NewSalaryRepository(deps.DB)
	customerRepo := repositories.NewCustomerRepository(deps.DB)
	employeeRepo := repositories.NewEmployeeRepository(deps.DB)
	supplierRepo := repositories.NewSupplierRepository(deps.DB)
	ingredientRepo := repositories.NewIngredientRepository(deps.DB)
	dishRepo := repositories.NewDishRepository(deps.DB)
	menuRepo := repositories.NewMenuRepository(deps.DB)
	transactionRepo := repositories.NewTransactionRepository(deps.DB)
	tx := repositories.NewTransactor(deps.DB)

	// Initialize Services
	return Services{
		Auth:          services.NewAuthService(authRepo, customerRepo, employeeRepo, tx, deps.JWT, deps.Blocklist, deps.Policy),
		Orders:        services.NewOrderService(orderRepo, transactionRepo, tx),
		PurchaseOrder: services.NewPurchaseOrderService(purchaseOrderRepo, ingredientRepo, transactionRepo, tx),
		Salaries:      services.NewSalaryService(salaryRepo, transactionRepo, tx),
		Customers:     services.NewCustomerService(customerRepo, tx),
		Employees:     services.NewEmployeeService(employeeRepo, tx),
		Suppliers:     services.NewSupplierService(supplierRepo, ingredientRepo, tx),
		Ingredients:   services.NewIngredientService(ingredientRepo, tx),
		Dishes:        services.NewDishService(dishRepo, customerRepo, tx),
		Menus:         services.NewMenuService(menuRepo, tx),
		Transactions:  services.NewTransactionService(transactionRepo, tx),
		Users:         services.NewUserService(authRepo, customerRepo, employeeRepo, tx, deps.Policy),
	}
}

// Setup installs the global middleware and every route of the application.
func Setup(engine *gin.Engine, deps Dependencies, svc Services) {
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())
	engine.Use(cors.New(corsConfig(deps.CORSAllowedOrigins)))
	engine.NoRoute(func(c *gin.Context) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Route not found.", c.Request.URL.Path))
	})

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(svc.Auth)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	purchaseOrderHandler := handlers.NewPurchaseOrderHandler(svc.PurchaseOrder)
	salaryHandler := handlers.NewSalaryHandler(svc.Salaries)
	customerHandler := handlers.NewCustomerHandler(svc.Customers)
	employeeHandler := handlers.NewEmployeeHandler(svc.Employees)
	supplierHandler := handlers.NewSupplierHandler(svc.Suppliers)
	ingredientHandler := handlers.NewIngredientHandler(svc.Ingredients)
	dishHandler := handlers.NewDishHandler(svc.Dishes)
	menuHandler := handlers.NewMenuHandler(svc.Menus)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	userHandler := handlers.NewUserHandler(svc.Users)
	systemHandler := handlers.NewSystemHandler(deps.DB, deps.Policy)

	engine.GET("/ping", systemHandler.Ping)
	engine.GET("/healthz", systemHandler.Health)

	apiV1 := engine.Group("/api/v1")
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(deps.JWT, deps.Blocklist))
	{
		pol := deps.Policy
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupOrderRoutes(authenticated, orderHandler, pol)
		SetupPurchaseOrderRoutes(authenticated, purchaseOrderHandler, pol)
		SetupSalaryRoutes(authenticated, salaryHandler, pol)
		SetupCustomerRoutes(authenticated, customerHandler, pol)
		SetupEmployeeRoutes(authenticated, employeeHandler, pol)
		SetupSupplierRoutes(authenticated, supplierHandler, pol)
		SetupIngredientRoutes(authenticated, ingredientHandler, pol)
		SetupDishRoutes(authenticated, dishHandler, pol)
		SetupMenuRoutes(authenticated, menuHandler, pol)
		SetupTransactionRoutes(authenticated, transactionHandler, pol)
		SetupUserRoutes(authenticated, userHandler, pol)
		SetupSystemRoutes(authenticated, systemHandler, pol)
	}
}

func corsConfig(allowedOrigins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	config.AllowCredentials = true
	return config
}

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.RegisterUser)
	group.POST("/login", authHandler.LoginUser)
	group.POST("/refresh-token", authHandler.RefreshToken)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.Logout)
	group.GET("/me", authHandler.GetCurrentUser)
}
