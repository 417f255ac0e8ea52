package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/repositories"
)

// The fakes must keep satisfying the repository interfaces the services depend on.
var (
	_ repositories.OrderRepository         = (*fakeOrderRepo)(nil)
	_ repositories.PurchaseOrderRepository = (*fakePurchaseOrderRepo)(nil)
	_ repositories.SalaryRepository        = (*fakeSalaryRepo)(nil)
	_ repositories.AuthRepository          = (*fakeAuthRepo)(nil)
	_ repositories.CustomerRepository      = (*fakeCustomerRepo)(nil)
	_ repositories.EmployeeRepository      = (*fakeEmployeeRepo)(nil)
	_ repositories.SupplierRepository      = (*fakeSupplierRepo)(nil)
	_ repositories.IngredientRepository    = (*fakeIngredientRepo)(nil)
	_ repositories.DishRepository          = (*fakeDishRepo)(nil)
	_ repositories.MenuRepository          = (*fakeMenuRepo)(nil)
	_ repositories.TransactionRepository   = (*fakeTransactionRepo)(nil)
	_ repositories.Transactor              = (*fakeTx)(nil)
)

// memStore is an in-memory stand-in for the database shared by the fake repositories.
type memStore struct {
	nextID      int64
	orders      map[int64]models.Order
	orderItems  map[int64]models.OrderItem
	pos         map[int64]models.PurchaseOrder
	poItems     map[int64]models.PurchaseOrderItem
	salaries    map[int64]models.Salary
	users       map[int64]models.User
	customers   map[int64]models.Customer
	employees   map[int64]models.Employee
	suppliers   map[int64]models.Supplier
	ingredients map[int64]models.Ingredient
	dishes      map[int64]models.Dish
	menus       map[int64]models.Menu
	menuDishes  map[int64]models.MenuDish
	ledger      map[int64]models.Transaction

	// failures makes the named repository method return the given error.
	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		orders:      map[int64]models.Order{},
		orderItems:  map[int64]models.OrderItem{},
		pos:         map[int64]models.PurchaseOrder{},
		poItems:     map[int64]models.PurchaseOrderItem{},
		salaries:    map[int64]models.Salary{},
		users:       map[int64]models.User{},
		customers:   map[int64]models.Customer{},
		employees:   map[int64]models.Employee{},
		suppliers:   map[int64]models.Supplier{},
		ingredients: map[int64]models.Ingredient{},
		dishes:      map[int64]models.Dish{},
		menus:       map[int64]models.Menu{},
		menuDishes:  map[int64]models.MenuDish{},
		ledger:      map[int64]models.Transaction{},
		failures:    map[string]error{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) fail(method string) error {
	return s.failures[method]
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	return &memStore{
		nextID:      s.nextID,
		orders:      copyMap(s.orders),
		orderItems:  copyMap(s.orderItems),
		pos:         copyMap(s.pos),
		poItems:     copyMap(s.poItems),
		salaries:    copyMap(s.salaries),
		users:       copyMap(s.users),
		customers:   copyMap(s.customers),
		employees:   copyMap(s.employees),
		suppliers:   copyMap(s.suppliers),
		ingredients: copyMap(s.ingredients),
		dishes:      copyMap(s.dishes),
		menus:       copyMap(s.menus),
		menuDishes:  copyMap(s.menuDishes),
		ledger:      copyMap(s.ledger),
	}
}

func (s *memStore) restore(snap *memStore) {
	failures := s.failures
	*s = *snap
	s.failures = failures
}

func fkError(constraint string) error {
	return fmt.Errorf("%w: testing (constraint: %s)", repositories.ErrForeignKeyViolation, constraint)
}

// fakeTx restores the store snapshot when the unit of work fails.
type fakeTx struct {
	store     *memStore
	commits   int
	rollbacks int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	snap := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(snap)
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

func paginate[T any](rows []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return rows
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// --- orders ---

type fakeOrderRepo struct{ s *memStore }

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, _ repositories.SQLExecutor, order *models.Order) (int64, error) {
	if err := r.s.fail("CreateOrder"); err != nil {
		return 0, err
	}
	if _, ok := r.s.customers[order.CustomerID]; !ok {
		return 0, fkError("customer_orders_customer_id_fkey")
	}
	if order.ServiceEmployeeID != nil {
		if _, ok := r.s.employees[*order.ServiceEmployeeID]; !ok {
			return 0, fkError("customer_orders_service_employee_id_fkey")
		}
	}
	order.ID = r.s.id()
	order.OrderDate = time.Now()
	stored := *order
	stored.Items = nil
	r.s.orders[order.ID] = stored
	return order.ID, nil
}

func (r *fakeOrderRepo) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) GetOrderForUpdate(ctx context.Context, _ repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	return r.GetOrderByID(ctx, orderID)
}

func (r *fakeOrderRepo) GetOrders(ctx context.Context, f models.OrderFilters) ([]models.Order, int, error) {
	var out []models.Order
	for _, id := range sortedKeys(r.s.orders) {
		o := r.s.orders[id]
		if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
			continue
		}
		if f.Status != nil && *f.Status != "" && o.Status != *f.Status {
			continue
		}
		if f.OrderType != nil && *f.OrderType != "" && o.OrderType != *f.OrderType {
			continue
		}
		if f.PaymentStatus != nil && *f.PaymentStatus != "" && o.PaymentStatus != *f.PaymentStatus {
			continue
		}
		out = append(out, o)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeOrderRepo) UpdateOrder(ctx context.Context, _ repositories.SQLExecutor, order *models.Order) error {
	stored, ok := r.s.orders[order.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if order.ServiceEmployeeID != nil {
		if _, ok := r.s.employees[*order.ServiceEmployeeID]; !ok {
			return fkError("customer_orders_service_employee_id_fkey")
		}
	}
	total := stored.TotalAmount
	stored = *order
	stored.TotalAmount = total
	stored.Items = nil
	r.s.orders[order.ID] = stored
	return nil
}

func (r *fakeOrderRepo) DeleteOrder(ctx context.Context, _ repositories.SQLExecutor, orderID int64) (int64, error) {
	if err := r.s.fail("DeleteOrder"); err != nil {
		return 0, err
	}
	if _, ok := r.s.orders[orderID]; !ok {
		return 0, repositories.ErrNotFound
	}
	delete(r.s.orders, orderID)
	return 1, nil
}

func (r *fakeOrderRepo) RecalculateTotal(ctx context.Context, _ repositories.SQLExecutor, orderID int64) (float64, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	total := 0.0
	for _, item := range r.s.orderItems {
		if item.OrderID == orderID {
			total += item.Subtotal
		}
	}
	o.TotalAmount = total
	r.s.orders[orderID] = o
	return total, nil
}

func (r *fakeOrderRepo) CreateOrderItem(ctx context.Context, _ repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	if err := r.s.fail("CreateOrderItem"); err != nil {
		return 0, err
	}
	if _, ok := r.s.orders[item.OrderID]; !ok {
		return 0, fkError("order_items_order_id_fkey")
	}
	item.ID = r.s.id()
	r.s.orderItems[item.ID] = *item
	return item.ID, nil
}

func (r *fakeOrderRepo) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	for _, id := range sortedKeys(r.s.orderItems) {
		if item := r.s.orderItems[id]; item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *fakeOrderRepo) DeleteOrderItem(ctx context.Context, _ repositories.SQLExecutor, orderID, itemID int64) (int64, error) {
	item, ok := r.s.orderItems[itemID]
	if !ok || item.OrderID != orderID {
		return 0, repositories.ErrNotFound
	}
	delete(r.s.orderItems, itemID)
	return 1, nil
}

func (r *fakeOrderRepo) DeleteOrderItemsByOrderID(ctx context.Context, _ repositories.SQLExecutor, orderID int64) (int64, error) {
	var n int64
	for id, item := range r.s.orderItems {
		if item.OrderID == orderID {
			delete(r.s.orderItems, id)
			n++
		}
	}
	return n, nil
}

// --- purchase orders ---

type fakePurchaseOrderRepo struct{ s *memStore }

func (r *fakePurchaseOrderRepo) CreatePurchaseOrder(ctx context.Context, _ repositories.SQLExecutor, po *models.PurchaseOrder) (int64, error) {
	if _, ok := r.s.suppliers[po.SupplierID]; !ok {
		return 0, fkError("purchase_orders_supplier_id_fkey")
	}
	po.ID = r.s.id()
	if po.OrderDate == "" {
		po.OrderDate = time.Now().Format("2006-01-02")
	}
	stored := *po
	stored.Items = nil
	r.s.pos[po.ID] = stored
	return po.ID, nil
}

func (r *fakePurchaseOrderRepo) CreatePurchaseOrderItem(ctx context.Context, _ repositories.SQLExecutor, item *models.PurchaseOrderItem) (int64, error) {
	if _, ok := r.s.ingredients[item.IngredientID]; !ok {
		return 0, fkError("purchase_order_items_ingredient_id_fkey")
	}
	item.ID = r.s.id()
	r.s.poItems[item.ID] = *item
	return item.ID, nil
}

func (r *fakePurchaseOrderRepo) GetPurchaseOrderByID(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	po, ok := r.s.pos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &po, nil
}

func (r *fakePurchaseOrderRepo) GetPurchaseOrderForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int64) (*models.PurchaseOrder, error) {
	return r.GetPurchaseOrderByID(ctx, id)
}

func (r *fakePurchaseOrderRepo) GetPurchaseOrderItems(ctx context.Context, purchaseOrderID int64) ([]models.PurchaseOrderItem, error) {
	items := []models.PurchaseOrderItem{}
	for _, id := range sortedKeys(r.s.poItems) {
		if item := r.s.poItems[id]; item.PurchaseOrderID == purchaseOrderID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *fakePurchaseOrderRepo) GetPurchaseOrders(ctx context.Context, f models.PurchaseOrderFilters) ([]models.PurchaseOrder, int, error) {
	var out []models.PurchaseOrder
	for _, id := range sortedKeys(r.s.pos) {
		po := r.s.pos[id]
		if f.Status != nil && *f.Status != "" && po.Status != *f.Status {
			continue
		}
		if f.SupplierID != nil && po.SupplierID != *f.SupplierID {
			continue
		}
		out = append(out, po)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakePurchaseOrderRepo) UpdatePurchaseOrderStatus(ctx context.Context, _ repositories.SQLExecutor, id int64, status string) error {
	po, ok := r.s.pos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	po.Status = status
	r.s.pos[id] = po
	return nil
}

func (r *fakePurchaseOrderRepo) DeletePurchaseOrderItems(ctx context.Context, _ repositories.SQLExecutor, purchaseOrderID int64) (int64, error) {
	var n int64
	for id, item := range r.s.poItems {
		if item.PurchaseOrderID == purchaseOrderID {
			delete(r.s.poItems, id)
			n++
		}
	}
	return n, nil
}

func (r *fakePurchaseOrderRepo) DeletePurchaseOrder(ctx context.Context, _ repositories.SQLExecutor, id int64) (int64, error) {
	if _, ok := r.s.pos[id]; !ok {
		return 0, repositories.ErrNotFound
	}
	delete(r.s.pos, id)
	return 1, nil
}

// --- salaries ---

type fakeSalaryRepo struct{ s *memStore }

func (r *fakeSalaryRepo) CreateSalary(ctx context.Context, _ repositories.SQLExecutor, salary *models.Salary) (int64, error) {
	if _, ok := r.s.employees[salary.EmployeeID]; !ok {
		return 0, fkError("salaries_employee_id_fkey")
	}
	for _, existing := range r.s.salaries {
		if existing.EmployeeID == salary.EmployeeID && existing.Year == salary.Year && existing.Month == salary.Month {
			return 0, fmt.Errorf("%w: duplicate (constraint: salaries_employee_period_key)", repositories.ErrDuplicateKey)
		}
	}
	salary.ID = r.s.id()
	r.s.salaries[salary.ID] = *salary
	return salary.ID, nil
}

func (r *fakeSalaryRepo) GetSalaryByID(ctx context.Context, id int64) (*models.Salary, error) {
	salary, ok := r.s.salaries[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &salary, nil
}

func (r *fakeSalaryRepo) GetSalaries(ctx context.Context, f models.SalaryFilters) ([]models.Salary, int, error) {
	var out []models.Salary
	for _, id := range sortedKeys(r.s.salaries) {
		s := r.s.salaries[id]
		if f.EmployeeID != nil && s.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.Year != nil && s.Year != *f.Year {
			continue
		}
		if f.Month != nil && s.Month != *f.Month {
			continue
		}
		if f.Status != nil && *f.Status != "" && s.Status != *f.Status {
			continue
		}
		out = append(out, s)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeSalaryRepo) MarkSalaryPaid(ctx context.Context, _ repositories.SQLExecutor, id int64, paymentDate string) error {
	salary, ok := r.s.salaries[id]
	if !ok || salary.Status != models.SalaryPending {
		return repositories.ErrNotFound
	}
	salary.Status = models.SalaryPaid
	salary.PaymentDate = &paymentDate
	r.s.salaries[id] = salary
	return nil
}

// --- users ---

type fakeAuthRepo struct{ s *memStore }

func (r *fakeAuthRepo) CreateUser(ctx context.Context, _ repositories.SQLExecutor, user *models.User) (int64, error) {
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return 0, fmt.Errorf("%w: duplicate (constraint: users_username_key)", repositories.ErrDuplicateKey)
		}
	}
	user.ID = r.s.id()
	user.IsActive = true
	r.s.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeAuthRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAuthRepo) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	u, ok := r.s.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *fakeAuthRepo) UpdatePassword(ctx context.Context, _ repositories.SQLExecutor, userID int64, passwordHash string) error {
	u, ok := r.s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = passwordHash
	r.s.users[userID] = u
	return nil
}

func (r *fakeAuthRepo) GetUsers(ctx context.Context, f models.UserFilters) ([]models.User, int, error) {
	var out []models.User
	for _, id := range sortedKeys(r.s.users) {
		u := r.s.users[id]
		if f.Role != nil && *f.Role != "" && u.Role != *f.Role {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		if f.Search != nil && *f.Search != "" && !strings.Contains(u.Username, *f.Search) {
			continue
		}
		out = append(out, u)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeAuthRepo) UpdateUser(ctx context.Context, _ repositories.SQLExecutor, user *models.User) error {
	stored, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Username == user.Username {
			return fmt.Errorf("%w: duplicate (constraint: users_username_key)", repositories.ErrDuplicateKey)
		}
	}
	stored.Username, stored.Role, stored.IsActive = user.Username, user.Role, user.IsActive
	r.s.users[user.ID] = stored
	return nil
}

// DeleteUser clears user_id on linked profiles like ON DELETE SET NULL.
func (r *fakeAuthRepo) DeleteUser(ctx context.Context, _ repositories.SQLExecutor, userID int64) error {
	if _, ok := r.s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.users, userID)
	for id, c := range r.s.customers {
		if c.UserID != nil && *c.UserID == userID {
			c.UserID = nil
			r.s.customers[id] = c
		}
	}
	for id, e := range r.s.employees {
		if e.UserID != nil && *e.UserID == userID {
			e.UserID = nil
			r.s.employees[id] = e
		}
	}
	return nil
}

// --- customers ---

type fakeCustomerRepo struct{ s *memStore }

func (r *fakeCustomerRepo) CreateCustomer(ctx context.Context, _ repositories.SQLExecutor, c *models.Customer) (int64, error) {
	if err := r.s.fail("CreateCustomer"); err != nil {
		return 0, err
	}
	c.ID = r.s.id()
	r.s.customers[c.ID] = *c
	return c.ID, nil
}

func (r *fakeCustomerRepo) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCustomerRepo) GetCustomers(ctx context.Context, f models.CustomerFilters) ([]models.Customer, int, error) {
	var out []models.Customer
	for _, id := range sortedKeys(r.s.customers) {
		c := r.s.customers[id]
		if f.Status != nil && *f.Status != "" && c.Status != *f.Status {
			continue
		}
		if f.Search != nil && *f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(*f.Search)) {
			continue
		}
		if f.UserID != nil && (c.UserID == nil || *c.UserID != *f.UserID) {
			continue
		}
		out = append(out, c)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeCustomerRepo) UpdateCustomer(ctx context.Context, _ repositories.SQLExecutor, c *models.Customer) error {
	if _, ok := r.s.customers[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerRepo) DeleteCustomer(ctx context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := r.s.customers[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, o := range r.s.orders {
		if o.CustomerID == id {
			return fkError("customer_orders_customer_id_fkey")
		}
	}
	delete(r.s.customers, id)
	return nil
}

// --- employees ---

type fakeEmployeeRepo struct{ s *memStore }

func (r *fakeEmployeeRepo) CreateEmployee(ctx context.Context, _ repositories.SQLExecutor, e *models.Employee) (int64, error) {
	e.ID = r.s.id()
	r.s.employees[e.ID] = *e
	return e.ID, nil
}

func (r *fakeEmployeeRepo) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	e, ok := r.s.employees[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (r *fakeEmployeeRepo) GetEmployees(ctx context.Context, f models.EmployeeFilters) ([]models.Employee, int, error) {
	var out []models.Employee
	for _, id := range sortedKeys(r.s.employees) {
		e := r.s.employees[id]
		if f.Status != nil && *f.Status != "" && e.Status != *f.Status {
			continue
		}
		if f.Position != nil && *f.Position != "" && e.Position != *f.Position {
			continue
		}
		if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
			continue
		}
		out = append(out, e)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeEmployeeRepo) UpdateEmployee(ctx context.Context, _ repositories.SQLExecutor, e *models.Employee) error {
	if _, ok := r.s.employees[e.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.employees[e.ID] = *e
	return nil
}

func (r *fakeEmployeeRepo) DeleteEmployee(ctx context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := r.s.employees[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, s := range r.s.salaries {
		if s.EmployeeID == id {
			return fkError("salaries_employee_id_fkey")
		}
	}
	delete(r.s.employees, id)
	return nil
}

// --- suppliers ---

type fakeSupplierRepo struct{ s *memStore }

func (r *fakeSupplierRepo) CreateSupplier(ctx context.Context, _ repositories.SQLExecutor, sup *models.Supplier) (int64, error) {
	sup.ID = r.s.id()
	r.s.suppliers[sup.ID] = *sup
	return sup.ID, nil
}

func (r *fakeSupplierRepo) GetSupplierByID(ctx context.Context, id int64) (*models.Supplier, error) {
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &sup, nil
}

func (r *fakeSupplierRepo) GetSuppliers(ctx context.Context, f models.SupplierFilters) ([]models.Supplier, int, error) {
	var out []models.Supplier
	for _, id := range sortedKeys(r.s.suppliers) {
		out = append(out, r.s.suppliers[id])
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeSupplierRepo) UpdateSupplier(ctx context.Context, _ repositories.SQLExecutor, sup *models.Supplier) error {
	if _, ok := r.s.suppliers[sup.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.suppliers[sup.ID] = *sup
	return nil
}

func (r *fakeSupplierRepo) DeleteSupplier(ctx context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := r.s.suppliers[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, po := range r.s.pos {
		if po.SupplierID == id {
			return fkError("purchase_orders_supplier_id_fkey")
		}
	}
	delete(r.s.suppliers, id)
	return nil
}

// --- ingredients ---

type fakeIngredientRepo struct{ s *memStore }

func (r *fakeIngredientRepo) CreateIngredient(ctx context.Context, _ repositories.SQLExecutor, i *models.Ingredient) (int64, error) {
	if i.SupplierID != nil {
		if _, ok := r.s.suppliers[*i.SupplierID]; !ok {
			return 0, fkError("ingredients_supplier_id_fkey")
		}
	}
	i.ID = r.s.id()
	r.s.ingredients[i.ID] = *i
	return i.ID, nil
}

func (r *fakeIngredientRepo) GetIngredientByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	i, ok := r.s.ingredients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &i, nil
}

func (r *fakeIngredientRepo) GetIngredients(ctx context.Context, f models.IngredientFilters) ([]models.Ingredient, int, error) {
	var out []models.Ingredient
	for _, id := range sortedKeys(r.s.ingredients) {
		i := r.s.ingredients[id]
		if f.Category != nil && *f.Category != "" && i.Category != *f.Category {
			continue
		}
		if f.SupplierID != nil && (i.SupplierID == nil || *i.SupplierID != *f.SupplierID) {
			continue
		}
		if f.LowStock && i.CurrentStock > i.MinimumStock {
			continue
		}
		out = append(out, i)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeIngredientRepo) GetIngredientsBySupplier(ctx context.Context, supplierID int64) ([]models.Ingredient, error) {
	out, _, err := r.GetIngredients(ctx, models.IngredientFilters{SupplierID: &supplierID})
	if out == nil {
		out = []models.Ingredient{}
	}
	return out, err
}

func (r *fakeIngredientRepo) GetCategories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	categories := []string{}
	for _, i := range r.s.ingredients {
		if !seen[i.Category] {
			seen[i.Category] = true
			categories = append(categories, i.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *fakeIngredientRepo) UpdateIngredient(ctx context.Context, _ repositories.SQLExecutor, i *models.Ingredient) error {
	stored, ok := r.s.ingredients[i.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stock := stored.CurrentStock
	stored = *i
	stored.CurrentStock = stock
	r.s.ingredients[i.ID] = stored
	return nil
}

func (r *fakeIngredientRepo) AdjustStock(ctx context.Context, _ repositories.SQLExecutor, id int64, delta float64) (float64, error) {
	i, ok := r.s.ingredients[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if i.CurrentStock+delta < 0 {
		return 0, repositories.ErrInsufficientStock
	}
	i.CurrentStock += delta
	r.s.ingredients[id] = i
	return i.CurrentStock, nil
}

func (r *fakeIngredientRepo) DeleteIngredient(ctx context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := r.s.ingredients[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, item := range r.s.poItems {
		if item.IngredientID == id {
			return fkError("purchase_order_items_ingredient_id_fkey")
		}
	}
	delete(r.s.ingredients, id)
	return nil
}

// --- dishes ---

type fakeDishRepo struct{ s *memStore }

func (r *fakeDishRepo) CreateDish(ctx context.Context, _ repositories.SQLExecutor, d *models.Dish) (int64, error) {
	d.ID = r.s.id()
	r.s.dishes[d.ID] = *d
	return d.ID, nil
}

func (r *fakeDishRepo) GetDishByID(ctx context.Context, id int64) (*models.Dish, error) {
	d, ok := r.s.dishes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (r *fakeDishRepo) GetDishes(ctx context.Context, f models.DishFilters) ([]models.Dish, int, error) {
	var out []models.Dish
	for _, id := range sortedKeys(r.s.dishes) {
		d := r.s.dishes[id]
		if f.Category != nil && *f.Category != "" && d.Category != *f.Category {
			continue
		}
		if f.Status != nil && *f.Status != "" && d.Status != *f.Status {
			continue
		}
		if f.Search != nil && *f.Search != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(*f.Search)) {
			continue
		}
		out = append(out, d)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeDishRepo) GetDishesByIDs(ctx context.Context, ids []int64) ([]models.Dish, error) {
	out := []models.Dish{}
	for _, id := range sortedKeys(r.s.dishes) {
		for _, want := range ids {
			if id == want {
				out = append(out, r.s.dishes[id])
			}
		}
	}
	return out, nil
}

func (r *fakeDishRepo) GetCategories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	categories := []string{}
	for _, d := range r.s.dishes {
		if !seen[d.Category] {
			seen[d.Category] = true
			categories = append(categories, d.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *fakeDishRepo) UpdateDish(ctx context.Context, _ repositories.SQLExecutor, d *models.Dish) error {
	if _, ok := r.s.dishes[d.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.dishes[d.ID] = *d
	return nil
}

func (r *fakeDishRepo) DeleteDish(ctx context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := r.s.dishes[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, md := range r.s.menuDishes {
		if md.DishID == id {
			return fkError("menu_dishes_dish_id_fkey")
		}
	}
	delete(r.s.dishes, id)
	return nil
}

// --- menus ---

type fakeMenuRepo struct{ s *memStore }

func (r *fakeMenuRepo) CreateMenu(ctx context.Context, _ repositories.SQLExecutor, m *models.Menu) (int64, error) {
	m.ID = r.s.id()
	stored := *m
	stored.Dishes = nil
	r.s.menus[m.ID] = stored
	return m.ID, nil
}

func (r *fakeMenuRepo) GetMenuByID(ctx context.Context, id int64) (*models.Menu, error) {
	m, ok := r.s.menus[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMenuRepo) GetMenus(ctx context.Context, f models.MenuFilters) ([]models.Menu, int, error) {
	var out []models.Menu
	for _, id := range sortedKeys(r.s.menus) {
		m := r.s.menus[id]
		if f.Type != nil && *f.Type != "" && m.Type != *f.Type {
			continue
		}
		if f.Status != nil && *f.Status != "" && m.Status != *f.Status {
			continue
		}
		out = append(out, m)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *fakeMenuRepo) UpdateMenu(ctx context.Context, _ repositories.SQLExecutor, m *models.Menu) error {
	if _, ok := r.s.menus[m.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *m
	stored.Dishes = nil
	r.s.menus[m.ID] = stored
	return nil
}

func (r *fakeMenuRepo) DeleteMenu(ctx context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := r.s.menus[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.menus, id)
	return nil
}

func (r *fakeMenuRepo) UpsertMenuDish(ctx context.Context, _ repositories.SQLExecutor, menuID, dishID int64, quantity int) (int64, error) {
	if err := r.s.fail("UpsertMenuDish"); err != nil {
		return 0, err
	}
	if _, ok := r.s.menus[menuID]; !ok {
		return 0, fkError("menu_dishes_menu_id_fkey")
	}
	if _, ok := r.s.dishes[dishID]; !ok {
		return 0, fkError("menu_dishes_dish_id_fkey")
	}
	for id, md := range r.s.menuDishes {
		if md.MenuID == menuID && md.DishID == dishID {
			md.Quantity = quantity
			r.s.menuDishes[id] = md
			return id, nil
		}
	}
	id := r.s.id()
	r.s.menuDishes[id] = models.MenuDish{ID: id, MenuID: menuID, DishID: dishID, Quantity: quantity}
	return id, nil
}

func (r *fakeMenuRepo) GetMenuDishes(ctx context.Context, menuID int64) ([]models.MenuDish, error) {
	out := []models.MenuDish{}
	for _, id := range sortedKeys(r.s.menuDishes) {
		md := r.s.menuDishes[id]
		if md.MenuID != menuID {
			continue
		}
		d := r.s.dishes[md.DishID]
		md.DishName, md.Category, md.Price = d.Name, d.Category, d.Price
		out = append(out, md)
	}
	return out, nil
}

func (r *fakeMenuRepo) DeleteMenuDish(ctx context.Context, _ repositories.SQLExecutor, menuID, dishID int64) (int64, error) {
	for id, md := range r.s.menuDishes {
		if md.MenuID == menuID && md.DishID == dishID {
			delete(r.s.menuDishes, id)
			return 1, nil
		}
	}
	return 0, repositories.ErrNotFound
}

func (r *fakeMenuRepo) DeleteMenuDishes(ctx context.Context, _ repositories.SQLExecutor, menuID int64) (int64, error) {
	var n int64
	for id, md := range r.s.menuDishes {
		if md.MenuID == menuID {
			delete(r.s.menuDishes, id)
			n++
		}
	}
	return n, nil
}

// --- transactions ---

type fakeTransactionRepo struct{ s *memStore }

func (r *fakeTransactionRepo) CreateTransaction(ctx context.Context, _ repositories.SQLExecutor, t *models.Transaction) (int64, error) {
	if err := r.s.fail("CreateTransaction"); err != nil {
		return 0, err
	}
	t.ID = r.s.id()
	if t.TransactionDate == "" {
		t.TransactionDate = time.Now().UTC().Format("2006-01-02")
	}
	r.s.ledger[t.ID] = *t
	return t.ID, nil
}

func (r *fakeTransactionRepo) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	t, ok := r.s.ledger[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTransactionRepo) GetTransactions(ctx context.Context, f models.TransactionFilters) ([]models.Transaction, int, error) {
	var out []models.Transaction
	for _, id := range sortedKeys(r.s.ledger) {
		t := r.s.ledger[id]
		if f.Type != nil && *f.Type != "" && t.Type != *f.Type {
			continue
		}
		if f.Category != nil && *f.Category != "" && t.Category != *f.Category {
			continue
		}
		if f.StartDate != nil && t.TransactionDate < *f.StartDate {
			continue
		}
		if f.EndDate != nil && t.TransactionDate > *f.EndDate {
			continue
		}
		out = append(out, t)
	}
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

// ledgerFor returns the recorded transactions of one category, in insertion order.
func (s *memStore) ledgerFor(category string) []models.Transaction {
	var out []models.Transaction
	for _, id := range sortedKeys(s.ledger) {
		if t := s.ledger[id]; t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// seed helpers

func (s *memStore) addCustomer(name string) int64 {
	id := s.id()
	s.customers[id] = models.Customer{ID: id, Name: name, Status: "active"}
	return id
}

func (s *memStore) addEmployee(name string) int64 {
	id := s.id()
	s.employees[id] = models.Employee{ID: id, Name: name, Position: "chef", Contact: "555", Status: "active"}
	return id
}

func (s *memStore) addSupplier(name string) int64 {
	id := s.id()
	s.suppliers[id] = models.Supplier{ID: id, Name: name, ContactPerson: "Li", ContactPhone: "555"}
	return id
}

func (s *memStore) addIngredient(name string, supplierID int64, stock float64) int64 {
	id := s.id()
	s.ingredients[id] = models.Ingredient{ID: id, Name: name, Category: "grain", Unit: "kg", SupplierID: &supplierID, CurrentStock: stock}
	return id
}

func (s *memStore) addDish(name, category, restrictions string, price float64) int64 {
	id := s.id()
	s.dishes[id] = models.Dish{ID: id, Name: name, Category: category, Restrictions: &restrictions, Price: price, Status: models.CatalogueActive}
	return id
}

func ptr[T any](v T) *T { return &v }
