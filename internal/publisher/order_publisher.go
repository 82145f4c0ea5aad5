package publisher

import (
	"encoding/json"
	"fmt"

	"car-inventory/internal/messaging"
	"car-inventory/internal/models"
)

const (
	OrderCreatedQueue = "order.created"
	OrderUpdatedQueue = "order.updated"
	OrderDeletedQueue = "order.deleted"
)

type OrderPublisher struct {
	mq *messaging.RabbitMQ
}

func NewOrderPublisher(mq *messaging.RabbitMQ) (*OrderPublisher, error) {
	if err := mq.DeclareQueues(OrderCreatedQueue, OrderUpdatedQueue, OrderDeletedQueue); err != nil {
		return nil, err
	}

	return &OrderPublisher{mq: mq}, nil
}

// OrderCreated publishes an order.created event carrying every line of
// the new order.
func (p *OrderPublisher) OrderCreated(order *models.Order) error {
	event := models.OrderEvent{
		OrderID: order.OrderID,
		Total:   order.OrderTotal,
	}

	for _, line := range order.Lines {
		event.CustID = line.CustID
		event.Lines = append(event.Lines, models.OrderLineEvent{
			CarID:    line.CarID,
			Quantity: line.Quantity,
		})
	}

	return p.publish(OrderCreatedQueue, event)
}

// OrderUpdated publishes an order.updated event for one line.
func (p *OrderPublisher) OrderUpdated(orderID, carID string, quantity int) error {
	event := models.OrderEvent{
		OrderID: orderID,
		Lines:   []models.OrderLineEvent{{CarID: carID, Quantity: quantity}},
	}

	return p.publish(OrderUpdatedQueue, event)
}

// OrderDeleted publishes an order.deleted event for one line.
func (p *OrderPublisher) OrderDeleted(orderID, carID string) error {
	event := models.OrderEvent{
		OrderID: orderID,
		Lines:   []models.OrderLineEvent{{CarID: carID}},
	}

	return p.publish(OrderDeletedQueue, event)
}

func (p *OrderPublisher) publish(queue string, event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.mq.Publish(queue, data)
}
