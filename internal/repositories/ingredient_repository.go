package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// ErrInsufficientStock is returned when a stock decrease would drive current_stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// IngredientRepository defines the database operations for stocked ingredients.
type IngredientRepository interface {
	CreateIngredient(ctx context.Context, executor SQLExecutor, ingredient *models.Ingredient) (int64, error)
	GetIngredientByID(ctx context.Context, id int64) (*models.Ingredient, error)
	GetIngredients(ctx context.Context, filters models.IngredientFilters) ([]models.Ingredient, int, error)
	GetIngredientsBySupplier(ctx context.Context, supplierID int64) ([]models.Ingredient, error)
	GetCategories(ctx context.Context) ([]string, error)
	UpdateIngredient(ctx context.Context, executor SQLExecutor, ingredient *models.Ingredient) error
	AdjustStock(ctx context.Context, executor SQLExecutor, id int64, delta float64) (float64, error) // Returns new stock level
	DeleteIngredient(ctx context.Context, executor SQLExecutor, id int64) error
}

type ingredientRepository struct {
	db *sql.DB
}

func NewIngredientRepository(db *sql.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

const ingredientColumns = `id, name, category, unit, current_stock, minimum_stock, supplier_id, price, expiry_date,
	nutrition_info, calories, restrictions, purchaser, origin, created_at, updated_at`

func scanIngredientRow(row scanner, extra ...interface{}) (*models.Ingredient, error) {
	i := &models.Ingredient{}
	var expiry sql.NullTime
	dest := []interface{}{&i.ID, &i.Name, &i.Category, &i.Unit, &i.CurrentStock, &i.MinimumStock, &i.SupplierID,
		&i.Price, &expiry, &i.NutritionInfo, &i.Calories, &i.Restrictions, &i.Purchaser, &i.Origin,
		&i.CreatedAt, &i.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	i.ExpiryDate = dateString(expiry)
	return i, nil
}

func (r *ingredientRepository) CreateIngredient(ctx context.Context, executor SQLExecutor, ingredient *models.Ingredient) (int64, error) {
	query := `INSERT INTO ingredients
	            (name, category, unit, current_stock, minimum_stock, supplier_id, price, expiry_date, nutrition_info,
	             calories, restrictions, purchaser, origin, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          RETURNING id`
	now := nowUTC()
	ingredient.CreatedAt, ingredient.UpdatedAt = now, now

	err := executor.QueryRowContext(ctx, query,
		ingredient.Name, ingredient.Category, ingredient.Unit, ingredient.CurrentStock, ingredient.MinimumStock,
		ingredient.SupplierID, ingredient.Price, ingredient.ExpiryDate, ingredient.NutritionInfo, ingredient.Calories,
		ingredient.Restrictions, ingredient.Purchaser, ingredient.Origin, ingredient.CreatedAt, ingredient.UpdatedAt,
	).Scan(&ingredient.ID)
	if err != nil {
		return 0, translateError(err, "creating ingredient")
	}
	return ingredient.ID, nil
}

func (r *ingredientRepository) GetIngredientByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = $1`
	ingredient, err := scanIngredientRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting ingredient by ID %d: %v", ErrDatabaseError, id, err)
	}
	return ingredient, nil
}

func (r *ingredientRepository) GetIngredients(ctx context.Context, filters models.IngredientFilters) ([]models.Ingredient, int, error) {
	ingredients := []models.Ingredient{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + ingredientColumns + `, COUNT(*) OVER() AS total_count FROM ingredients`)

	var where whereBuilder
	if filters.Category != nil && *filters.Category != "" {
		where.add("category = $%d", *filters.Category)
	}
	if filters.SupplierID != nil {
		where.add("supplier_id = $%d", *filters.SupplierID)
	}
	if filters.LowStock {
		where.addRaw("current_stock <= minimum_stock")
	}
	where.writeTo(&queryBuilder, "name ASC, id ASC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying ingredients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		i, err := scanIngredientRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning ingredient: %v", ErrDatabaseError, err)
		}
		ingredients = append(ingredients, *i)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating ingredient rows: %v", ErrDatabaseError, err)
	}
	return ingredients, totalCount, nil
}

func (r *ingredientRepository) GetIngredientsBySupplier(ctx context.Context, supplierID int64) ([]models.Ingredient, error) {
	ingredients, _, err := r.GetIngredients(ctx, models.IngredientFilters{SupplierID: &supplierID})
	return ingredients, err
}

func (r *ingredientRepository) GetCategories(ctx context.Context) ([]string, error) {
	return selectStrings(ctx, r.db, `SELECT DISTINCT category FROM ingredients ORDER BY category`, "ingredient categories")
}

func (r *ingredientRepository) UpdateIngredient(ctx context.Context, executor SQLExecutor, ingredient *models.Ingredient) error {
	query := `UPDATE ingredients SET
	            name = $1, category = $2, unit = $3, minimum_stock = $4, supplier_id = $5, price = $6, expiry_date = $7,
	            nutrition_info = $8, calories = $9, restrictions = $10, purchaser = $11, origin = $12, updated_at = $13
	          WHERE id = $14`
	ingredient.UpdatedAt = nowUTC()
	result, err := executor.ExecContext(ctx, query,
		ingredient.Name, ingredient.Category, ingredient.Unit, ingredient.MinimumStock, ingredient.SupplierID,
		ingredient.Price, ingredient.ExpiryDate, ingredient.NutritionInfo, ingredient.Calories, ingredient.Restrictions,
		ingredient.Purchaser, ingredient.Origin, ingredient.UpdatedAt, ingredient.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating ingredient ID %d", ingredient.ID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("ingredient update ID %d", ingredient.ID))
	return err
}

// AdjustStock adds delta to current_stock in a single statement. A negative result is refused
// with ErrInsufficientStock and nothing changes.
func (r *ingredientRepository) AdjustStock(ctx context.Context, executor SQLExecutor, id int64, delta float64) (float64, error) {
	query := `UPDATE ingredients
	          SET current_stock = current_stock + $1, updated_at = $2
	          WHERE id = $3 AND current_stock + $1 >= 0
	          RETURNING current_stock`
	var newStock float64
	err := executor.QueryRowContext(ctx, query, delta, nowUTC(), id).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: updating stock for ingredient ID %d: %v", ErrDatabaseError, id, err)
	}

	var exists bool
	checkErr := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ingredients WHERE id = $1)`, id).Scan(&exists)
	if checkErr != nil {
		return 0, fmt.Errorf("%w: checking ingredient ID %d: %v", ErrDatabaseError, id, checkErr)
	}
	if !exists {
		return 0, ErrNotFound
	}
	return 0, ErrInsufficientStock
}

func (r *ingredientRepository) DeleteIngredient(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("deleting ingredient ID %d", id))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("deleting ingredient ID %d", id))
	return err
}
