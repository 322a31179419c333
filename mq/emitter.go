package mq

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"aquiguaira/models"
	"aquiguaira/rdx"
)

const Channel = "aquiguaira-events"

var (
	mu        sync.RWMutex
	listeners []func(models.Event)
)

// Subscribe registers an in-process listener for every emitted event.
func Subscribe(fn func(models.Event)) {
	mu.Lock()
	defer mu.Unlock()
	listeners = append(listeners, fn)
}

func dispatch(ev models.Event) {
	mu.RLock()
	defer mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// Emit publishes an event on Redis so every instance sees it. Without Redis,
// or when publishing fails, the event is delivered to local listeners only.
func Emit(ctx context.Context, ev models.Event) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	if !rdx.Enabled() {
		dispatch(ev)
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, Channel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s: %v", ev.Type, err)
		dispatch(ev)
	}
}

// StartWorker relays events published on Redis to local listeners until ctx
// is cancelled. It returns immediately when Redis is not configured.
func StartWorker(ctx context.Context) {
	if !rdx.Enabled() {
		return
	}

	sub := rdx.Conn.Subscribe(ctx, Channel)
	defer sub.Close()
	ch := sub.Channel()

	log.Printf("[EventWorker] Listening on %s", Channel)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[EventWorker] Failed to parse event: %v", err)
				continue
			}
			dispatch(ev)
		}
	}
}
