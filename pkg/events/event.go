package events

import "time"

// Event is anything the bot announces on the bus.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// DomainEvent is the only Event implementation the bot emits.
type DomainEvent struct {
	Type       string
	UserFolder string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType, userFolder string, data map[string]interface{}) DomainEvent {
	return DomainEvent{
		Type:       eventType,
		UserFolder: userFolder,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func (e DomainEvent) EventType() string {
	return e.Type
}

// Payload merges the user folder and timestamp into the event data.
func (e DomainEvent) Payload() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Data)+2)
	for k, v := range e.Data {
		out[k] = v
	}
	out["user"] = e.UserFolder
	out["occurred_at"] = e.OccurredAt.UTC().Format(time.RFC3339)
	return out
}

func (e DomainEvent) Timestamp() time.Time {
	return e.OccurredAt
}
