package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"car-inventory/internal/images"
	"car-inventory/internal/models"
)

// Catalog is the slice of the car repository the shop handlers use.
type Catalog interface {
	GetAll(ctx context.Context) ([]models.Car, error)
	GetByID(ctx context.Context, id string) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) error
	Update(ctx context.Context, id string, req models.CarRequest) (*models.Car, error)
	Delete(ctx context.Context, id string) error
}

type ShopHandler struct {
	catalog Catalog
	images  images.Provider
}

func NewShopHandler(catalog Catalog, provider images.Provider) *ShopHandler {
	return &ShopHandler{
		catalog: catalog,
		images:  provider,
	}
}

// HealthCheck returns server status
func (h *ShopHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "storefront"})
}

// ListCars returns every car in the catalog
func (h *ShopHandler) ListCars(c *gin.Context) {
	cars, err := h.catalog.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if cars == nil {
		cars = []models.Car{}
	}
	c.JSON(http.StatusOK, cars)
}

// GetCar returns a single car
func (h *ShopHandler) GetCar(c *gin.Context) {
	car, err := h.catalog.GetByID(c.Request.Context(), c.Param("car_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if car == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
		return
	}

	c.JSON(http.StatusOK, car)
}

// CreateCar adds a car to the catalog
func (h *ShopHandler) CreateCar(c *gin.Context) {
	var req models.CarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, err)
		return
	}

	h.resolveImage(c.Request.Context(), &req)

	car := models.NewCar(req)
	if err := h.catalog.Create(c.Request.Context(), car); err != nil {
		respondFailure(c, err)
		return
	}

	log.Printf("✅ Added %s %s %s %s to the catalog", car.Color, car.Year, car.Make, car.Model)
	c.JSON(http.StatusCreated, car)
}

// UpdateCar rewrites a car's attributes
func (h *ShopHandler) UpdateCar(c *gin.Context) {
	var req models.CarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, err)
		return
	}

	h.resolveImage(c.Request.Context(), &req)

	car, err := h.catalog.Update(c.Request.Context(), c.Param("car_id"), req)
	if err != nil {
		respondFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, car)
}

// DeleteCar removes a car from the catalog
func (h *ShopHandler) DeleteCar(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("car_id")); err != nil {
		respondFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "Car was successfully deleted!",
	})
}

// resolveImage fills in a missing image via the image provider. Lookup
// failures are logged and the image stays empty.
func (h *ShopHandler) resolveImage(ctx context.Context, req *models.CarRequest) {
	if req.Image != "" {
		return
	}

	img, err := h.images.Search(ctx, req.ImageQuery())
	if err != nil {
		log.Printf("⚠️ Image lookup failed for %q: %v", req.ImageQuery(), err)
		return
	}
	req.Image = img
}
