package events

import "time"

// EventType enumerates supported event identifiers. Values double as AMQP routing keys.
type EventType string

const (
	EventStoreBrandChanged    EventType = "store_brand.changed"
	EventStoreLocationChanged EventType = "store_location.changed"
	EventCategoryChanged      EventType = "category.changed"
	EventProductChanged       EventType = "product.changed"
	EventProductEntryCreated  EventType = "product_entry.created"
	EventUserRoleChanged      EventType = "user.role_changed"
)

// AllTypes lists every event type, in declaration order.
var AllTypes = []EventType{
	EventStoreBrandChanged,
	EventStoreLocationChanged,
	EventCategoryChanged,
	EventProductChanged,
	EventProductEntryCreated,
	EventUserRoleChanged,
}

// Action describes what happened to the resource of a *.changed event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ResourceID int64     `json:"resource_id"`
	ActorID    int64     `json:"actor_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

// ChangedPayload accompanies every *.changed event.
type ChangedPayload struct {
	Action Action `json:"action"`
}

// ProductEntryCreatedPayload payload.
type ProductEntryCreatedPayload struct {
	ProductID       int64  `json:"product_id"`
	StoreLocationID int64  `json:"store_location_id"`
	Price           string `json:"price"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	OldRole string `json:"old_role"`
	NewRole string `json:"new_role"`
}
