package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-inventory/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memLedger mirrors the order repository's transactional arithmetic in
// memory: a failing operation leaves no partial state behind.
type memLedger struct {
	cars      map[string]*models.Car
	customers map[string]bool
	orders    map[string]*models.Order
	lines     []*models.OrderLine
}

func newMemLedger(cars ...*models.Car) *memLedger {
	l := &memLedger{
		cars:      make(map[string]*models.Car),
		customers: make(map[string]bool),
		orders:    make(map[string]*models.Order),
	}
	for _, c := range cars {
		l.cars[c.CarID] = c
	}
	return l
}

func (l *memLedger) CreateOrder(custID string, reqs []models.OrderLineRequest) (*models.Order, error) {
	order := models.NewOrder()
	staged := make(map[string]int)
	var lines []*models.OrderLine

	for _, req := range reqs {
		car, ok := l.cars[req.CarID]
		if !ok {
			return nil, models.ErrNotFound
		}

		line, err := models.NewOrderLine(req.CarID, req.Quantity, req.Price, order.OrderID, custID)
		if err != nil {
			return nil, err
		}
		if car.Quantity-staged[req.CarID]-req.Quantity < 0 {
			return nil, models.ErrInsufficientStock
		}

		staged[req.CarID] += req.Quantity
		order.IncrementTotal(line.Price)
		lines = append(lines, line)
	}

	for id, qty := range staged {
		l.cars[id].Quantity -= qty
	}
	l.customers[custID] = true
	for _, line := range lines {
		l.lines = append(l.lines, line)
		order.Lines = append(order.Lines, *line)
	}
	l.orders[order.OrderID] = order

	return order, nil
}

func (l *memLedger) findLine(orderID, carID string) *models.OrderLine {
	for _, line := range l.lines {
		if line.OrderID == orderID && line.CarID == carID {
			return line
		}
	}
	return nil
}

func (l *memLedger) UpdateLine(orderID, carID string, newQuantity int) error {
	line := l.findLine(orderID, carID)
	if line == nil {
		return models.ErrNotFound
	}
	car, ok := l.cars[carID]
	if !ok {
		return models.ErrNotFound
	}

	adj, err := models.PlanLineUpdate(car.Price, line.Quantity, newQuantity, line.Price)
	if err != nil {
		return err
	}
	if adj.StockDelta == 0 {
		return nil
	}

	if adj.StockDelta > 0 {
		if err := car.DecrementQuantity(adj.StockDelta); err != nil {
			return err
		}
	} else {
		if err := car.IncrementQuantity(-adj.StockDelta); err != nil {
			return err
		}
	}

	line.SetPrice(car.Price, newQuantity)
	l.orders[orderID].IncrementTotal(adj.TotalDelta)
	return nil
}

func (l *memLedger) DeleteLine(orderID, carID string) error {
	line := l.findLine(orderID, carID)
	if line == nil {
		return models.ErrNotFound
	}

	l.orders[orderID].DecrementTotal(line.Price)
	if err := l.cars[carID].IncrementQuantity(line.Quantity); err != nil {
		return err
	}

	for i, candidate := range l.lines {
		if candidate == line {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			break
		}
	}
	return nil
}

func (l *memLedger) OrdersForCustomer(custID string) ([]models.CustomerOrderLine, error) {
	var out []models.CustomerOrderLine
	for _, line := range l.lines {
		if line.CustID != custID {
			continue
		}
		car := l.cars[line.CarID]
		out = append(out, models.CustomerOrderLine{
			CarID:       car.CarID,
			Make:        car.Make,
			Model:       car.Model,
			Year:        car.Year,
			Color:       car.Color,
			Image:       car.Image,
			Description: car.Description,
			Price:       car.Price,
			Quantity:    line.Quantity,
			OrderID:     line.OrderID,
			LineID:      line.CarOrderID,
		})
	}
	return out, nil
}

func (l *memLedger) Stats() (*models.ShopStats, error) {
	stats := &models.ShopStats{
		Cars:      len(l.cars),
		Customers: len(l.customers),
		Sales:     decimal.Zero,
	}
	for _, order := range l.orders {
		stats.Sales = stats.Sales.Add(order.OrderTotal)
	}
	return stats, nil
}

func (l *memLedger) singleOrder(t *testing.T) *models.Order {
	t.Helper()
	require.Len(t, l.orders, 1)
	for _, order := range l.orders {
		return order
	}
	return nil
}

// recordingEvents remembers which events were published.
type recordingEvents struct {
	created, updated, deleted int
}

func (e *recordingEvents) OrderCreated(*models.Order) error { e.created++; return nil }

func (e *recordingEvents) OrderUpdated(string, string, int) error { e.updated++; return nil }

func (e *recordingEvents) OrderDeleted(string, string) error { e.deleted++; return nil }

func newOrderRouter(ledger OrderLedger, events OrderEvents) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(ledger, events)

	router := gin.New()
	router.GET("/api/order/:cust_id", h.GetOrders)
	router.POST("/api/order/create/:cust_id", h.CreateOrder)
	router.PUT("/api/order/update/:order_id", h.UpdateOrder)
	router.DELETE("/api/order/delete/:order_id", h.DeleteOrder)
	router.GET("/stats", h.ShopStats)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testCar() *models.Car {
	return &models.Car{
		CarID:    "car-a",
		Make:     "Honda",
		Model:    "Civic",
		Year:     "2020",
		Color:    "blue",
		Price:    dec("10.00"),
		Quantity: 8,
	}
}

func TestCreateOrder(t *testing.T) {
	car := testCar()
	ledger := newMemLedger(car)
	events := &recordingEvents{}
	router := newOrderRouter(ledger, events)

	w := doJSON(t, router, http.MethodPost, "/api/order/create/cust-1", gin.H{
		"order": []gin.H{{"car_id": "car-a", "quantity": 2, "price": "10.00"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "New Order was created!")
	assert.Equal(t, 6, car.Quantity)
	assert.Equal(t, 1, events.created)

	order := ledger.singleOrder(t)
	assert.True(t, order.OrderTotal.Equal(dec("20.00")), "got %s", order.OrderTotal)
}

func TestCreateOrderUnknownCar(t *testing.T) {
	car := testCar()
	ledger := newMemLedger(car)
	events := &recordingEvents{}
	router := newOrderRouter(ledger, events)

	w := doJSON(t, router, http.MethodPost, "/api/order/create/cust-1", gin.H{
		"order": []gin.H{{"car_id": "no-such-car", "quantity": 1, "price": "10.00"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to process your request")
	assert.Equal(t, 8, car.Quantity, "failed create must not move stock")
	assert.Empty(t, ledger.orders)
	assert.Equal(t, 0, events.created)
}

func TestCreateOrderMissingBody(t *testing.T) {
	router := newOrderRouter(newMemLedger(), &recordingEvents{})

	w := doJSON(t, router, http.MethodPost, "/api/order/create/cust-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to process your request")
}

func TestCreateOrderReusesCustomer(t *testing.T) {
	ledger := newMemLedger(testCar())
	router := newOrderRouter(ledger, &recordingEvents{})

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/order/create/cust-1", gin.H{
			"order": []gin.H{{"car_id": "car-a", "quantity": 1, "price": "10.00"}},
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Len(t, ledger.customers, 1, "same customer id must not duplicate the customer")
	assert.Len(t, ledger.orders, 2)
}

// TestOrderLifecycle drives the documented round trip over HTTP:
// 2 units at 10.00 -> total 20.00, update to 5 -> total 50.00,
// delete -> total 0 and all stock returned.
func TestOrderLifecycle(t *testing.T) {
	car := testCar()
	ledger := newMemLedger(car)
	events := &recordingEvents{}
	router := newOrderRouter(ledger, events)

	w := doJSON(t, router, http.MethodPost, "/api/order/create/cust-1", gin.H{
		"order": []gin.H{{"car_id": "car-a", "quantity": 2, "price": "10.00"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	order := ledger.singleOrder(t)
	require.True(t, order.OrderTotal.Equal(dec("20.00")))
	require.Equal(t, 6, car.Quantity)

	w = doJSON(t, router, http.MethodPut, "/api/order/update/"+order.OrderID, gin.H{
		"car_id": "car-a", "quantity": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Order was successfully updated!")
	assert.True(t, order.OrderTotal.Equal(dec("50.00")), "got %s", order.OrderTotal)
	assert.Equal(t, 3, car.Quantity)

	// same quantity again: nothing moves
	w = doJSON(t, router, http.MethodPut, "/api/order/update/"+order.OrderID, gin.H{
		"car_id": "car-a", "quantity": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, order.OrderTotal.Equal(dec("50.00")))
	assert.Equal(t, 3, car.Quantity)

	w = doJSON(t, router, http.MethodDelete, "/api/order/delete/"+order.OrderID, gin.H{
		"car_id": "car-a",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Order was successfully deleted!")
	assert.True(t, order.OrderTotal.IsZero(), "got %s", order.OrderTotal)
	assert.Equal(t, 8, car.Quantity, "stock must be fully restored")

	assert.Equal(t, 1, events.created)
	assert.Equal(t, 2, events.updated)
	assert.Equal(t, 1, events.deleted)
}

func TestUpdateOrderMissingLine(t *testing.T) {
	car := testCar()
	ledger := newMemLedger(car)
	router := newOrderRouter(ledger, &recordingEvents{})

	w := doJSON(t, router, http.MethodPut, "/api/order/update/no-such-order", gin.H{
		"car_id": "car-a", "quantity": 3,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to process your request")
	assert.Equal(t, 8, car.Quantity)
}

func TestUpdateOrderInsufficientStock(t *testing.T) {
	car := testCar()
	car.Quantity = 2
	ledger := newMemLedger(car)
	router := newOrderRouter(ledger, &recordingEvents{})

	w := doJSON(t, router, http.MethodPost, "/api/order/create/cust-1", gin.H{
		"order": []gin.H{{"car_id": "car-a", "quantity": 2, "price": "10.00"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	order := ledger.singleOrder(t)

	// only 0 left on hand, asking for 50 must fail and change nothing
	w = doJSON(t, router, http.MethodPut, "/api/order/update/"+order.OrderID, gin.H{
		"car_id": "car-a", "quantity": 50,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, car.Quantity)
	assert.True(t, order.OrderTotal.Equal(dec("20.00")))
}

func TestDeleteOrderMissingLine(t *testing.T) {
	router := newOrderRouter(newMemLedger(testCar()), &recordingEvents{})

	w := doJSON(t, router, http.MethodDelete, "/api/order/delete/no-such-order", gin.H{
		"car_id": "car-a",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to process your request")
}

func TestGetOrdersEmpty(t *testing.T) {
	router := newOrderRouter(newMemLedger(), &recordingEvents{})

	w := doJSON(t, router, http.MethodGet, "/api/order/cust-1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetOrdersFlattened(t *testing.T) {
	ledger := newMemLedger(testCar())
	router := newOrderRouter(ledger, &recordingEvents{})

	w := doJSON(t, router, http.MethodPost, "/api/order/create/cust-1", gin.H{
		"order": []gin.H{{"car_id": "car-a", "quantity": 2, "price": "10.00"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	order := ledger.singleOrder(t)

	w = doJSON(t, router, http.MethodGet, "/api/order/cust-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var lines []models.CustomerOrderLine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 1)

	assert.Equal(t, "car-a", lines[0].CarID)
	assert.Equal(t, "Honda", lines[0].Make)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, order.OrderID, lines[0].OrderID)
	assert.NotEmpty(t, lines[0].LineID)
	assert.True(t, lines[0].Price.Equal(dec("10.00")), "flattened price is the car's unit price")
}

func TestShopStats(t *testing.T) {
	ledger := newMemLedger(testCar())
	router := newOrderRouter(ledger, &recordingEvents{})

	w := doJSON(t, router, http.MethodPost, "/api/order/create/cust-1", gin.H{
		"order": []gin.H{{"car_id": "car-a", "quantity": 3, "price": "10.00"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.ShopStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Cars)
	assert.Equal(t, 1, stats.Customers)
	assert.True(t, stats.Sales.Equal(dec("30.00")), "got %s", stats.Sales)
}
