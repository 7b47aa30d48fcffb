package service

import "chronodoc/internal/domain"

// EventType defines the type of document change event
type EventType string

const (
	EventDocumentAdded      EventType = "document_added"
	EventDocumentUpdated    EventType = "document_updated"
	EventDocumentCorrected  EventType = "document_corrected"
	EventDocumentRemoved    EventType = "document_removed"
	EventDocumentReinstated EventType = "document_reinstated"
)

// Event records one applied document mutation.
type Event struct {
	Type     EventType       `json:"type"`
	UniqueID domain.UniqueID `json:"unique_id"`
}

// EventBus allows publishing and subscribing to document change events
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
