package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Eursukkul/gym-reservation/internal/models"
	"github.com/Eursukkul/gym-reservation/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

const upsertTimeout = 5 * time.Second

// TimeSlotConsumer applies capacity changes published by other instances. It writes through the
// repository rather than TimeSlotService so applying an update never republishes it, and it
// skips messages stamped with its own instance id.
type TimeSlotConsumer struct {
	repo       repository.TimeSlotRepository
	instanceID string
}

func NewTimeSlotConsumer(repo repository.TimeSlotRepository, instanceID string) *TimeSlotConsumer {
	return &TimeSlotConsumer{repo: repo, instanceID: instanceID}
}

// Start listens for messages until the delivery channel closes. The returned channel is closed
// once the last message has been handled.
func (tc *TimeSlotConsumer) Start(msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			tc.handleMessage(msg)
		}
		log.Println("[TimeSlotConsumer] channel closed, stopping consumer")
	}()
	return done
}

func (tc *TimeSlotConsumer) handleMessage(msg amqp.Delivery) {
	if tc.instanceID != "" && msg.AppId == tc.instanceID {
		msg.Ack(false)
		return
	}

	var slot models.TimeSlot
	if err := json.Unmarshal(msg.Body, &slot); err != nil {
		log.Printf("[TimeSlotConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	if !models.IsSlotLabel(slot.Time) || slot.MaxCapacity < 0 {
		log.Printf("[TimeSlotConsumer] dropping invalid slot %q capacity %d", slot.Time, slot.MaxCapacity)
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), upsertTimeout)
	defer cancel()

	if err := tc.repo.Upsert(ctx, &slot); err != nil {
		log.Printf("[TimeSlotConsumer] failed to upsert slot %s: %v", slot.Time, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[TimeSlotConsumer] synced slot %s: max_capacity=%d", slot.Time, slot.MaxCapacity)
	msg.Ack(false)
}
