package consumer

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"car-inventory/internal/db"
	"car-inventory/internal/models"
)

// CatalogConsumer drops cached catalog entries for cars whose stock
// moved inside a committed ledger transaction.
type CatalogConsumer struct {
	catalog *db.CachedCarRepository
}

func NewCatalogConsumer(catalog *db.CachedCarRepository) *CatalogConsumer {
	return &CatalogConsumer{catalog: catalog}
}

// ProcessOrderEvents handles order lifecycle events from one queue.
func (c *CatalogConsumer) ProcessOrderEvents(messages <-chan amqp.Delivery) {
	for msg := range messages {
		var event models.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Printf("❌ Failed to parse event: %v", err)
			msg.Nack(false, false) // Don't requeue bad messages
			continue
		}

		log.Printf("📥 Order %s touched %d car(s), refreshing catalog cache", event.OrderID, len(event.Lines))

		ids := make([]string, 0, len(event.Lines))
		for _, line := range event.Lines {
			ids = append(ids, line.CarID)
		}
		c.catalog.Invalidate(context.Background(), ids...)

		msg.Ack(false)
	}
}
