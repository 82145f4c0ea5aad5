package db

import (
	"database/sql"
	"fmt"

	"car-inventory/internal/models"
)

type CarRepository struct {
	db *sql.DB
}

func NewCarRepository(database *PostgresDB) *CarRepository {
	return &CarRepository{db: database.Conn}
}

// execer is satisfied by both *sql.DB and *sql.Tx so the stock helpers
// can run standalone or inside a ledger transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// GetAll returns every car in the catalog.
func (r *CarRepository) GetAll() ([]models.Car, error) {
	query := `SELECT car_id, make, model, year, color, image, description, price, quantity, date_added FROM cars ORDER BY date_added`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	var cars []models.Car
	for rows.Next() {
		var c models.Car
		err := rows.Scan(&c.CarID, &c.Make, &c.Model, &c.Year, &c.Color, &c.Image, &c.Description, &c.Price, &c.Quantity, &c.DateAdded)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, c)
	}

	return cars, nil
}

// GetByID returns a single car
func (r *CarRepository) GetByID(id string) (*models.Car, error) {
	query := `SELECT car_id, make, model, year, color, image, description, price, quantity, date_added FROM cars WHERE car_id = $1`

	var c models.Car
	err := r.db.QueryRow(query, id).Scan(&c.CarID, &c.Make, &c.Model, &c.Year, &c.Color, &c.Image, &c.Description, &c.Price, &c.Quantity, &c.DateAdded)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	return &c, nil
}

// Create inserts a new car
func (r *CarRepository) Create(car *models.Car) error {
	query := `
		INSERT INTO cars (car_id, make, model, year, color, image, description, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING date_added
	`

	err := r.db.QueryRow(query,
		car.CarID, car.Make, car.Model, car.Year, car.Color,
		car.Image, car.Description, car.Price, car.Quantity,
	).Scan(&car.DateAdded)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	return nil
}

// Update rewrites a car's attributes
func (r *CarRepository) Update(id string, req models.CarRequest) (*models.Car, error) {
	query := `
		UPDATE cars
		SET make = $1, model = $2, year = $3, color = $4, image = $5, description = $6, price = $7, quantity = $8
		WHERE car_id = $9
		RETURNING car_id, make, model, year, color, image, description, price, quantity, date_added
	`

	var c models.Car
	err := r.db.QueryRow(query,
		req.Make, req.Model, req.Year, req.Color, req.Image, req.Description, req.Price, req.Quantity, id,
	).Scan(&c.CarID, &c.Make, &c.Model, &c.Year, &c.Color, &c.Image, &c.Description, &c.Price, &c.Quantity, &c.DateAdded)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update car: %w", err)
	}

	return &c, nil
}

// Delete removes a car. Cars still referenced by order lines can't be
// deleted; the stock has to come back first.
func (r *CarRepository) Delete(id string) error {
	var inUse bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM car_orders WHERE car_id = $1)`, id).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("failed to check car references: %w", err)
	}
	if inUse {
		return models.ErrCarInUse
	}

	result, err := r.db.Exec(`DELETE FROM cars WHERE car_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// IncrementQuantity returns n units to a car's stock.
func (r *CarRepository) IncrementQuantity(id string, n int) error {
	return incrementStock(r.db, id, n)
}

// DecrementQuantity takes n units out of a car's stock, failing with
// ErrInsufficientStock rather than letting the quantity go negative.
func (r *CarRepository) DecrementQuantity(id string, n int) error {
	return decrementStock(r.db, id, n)
}

func incrementStock(e execer, carID string, n int) error {
	if n < 0 {
		return models.ErrInvalidQuantity
	}

	result, err := e.Exec(`UPDATE cars SET quantity = quantity + $1 WHERE car_id = $2`, n, carID)
	if err != nil {
		return fmt.Errorf("failed to increment quantity: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func decrementStock(e execer, carID string, n int) error {
	if n < 0 {
		return models.ErrInvalidQuantity
	}

	// The quantity guard rides on the row update itself, so two
	// concurrent takes of the same stock can never both succeed.
	result, err := e.Exec(`UPDATE cars SET quantity = quantity - $1 WHERE car_id = $2 AND quantity >= $1`, n, carID)
	if err != nil {
		return fmt.Errorf("failed to decrement quantity: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var quantity int
		err := e.QueryRow(`SELECT quantity FROM cars WHERE car_id = $1`, carID).Scan(&quantity)
		if err == sql.ErrNoRows {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check stock: %w", err)
		}
		return models.ErrInsufficientStock
	}

	return nil
}
