package repositories

import (
	"fmt"
	"time"

	"kycgate/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recordEvent appends one audit-log event using the given DB handle.
// Callers inside a transaction pass the tx handle so the event commits
// or rolls back together with the state change it describes.
func recordEvent(db *gorm.DB, component, name string, payload models.JSON) error {
	event := &models.Event{
		ID:        uuid.NewString(),
		Component: component,
		Name:      name,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}
	if err := db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to record event %s: %w", name, err)
	}
	return nil
}

// EventRepository exposes the audit log to off-chain observers.
type EventRepository interface {
	List(component, name string, limit int) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) List(component, name string, limit int) ([]models.Event, error) {
	q := r.db.Order("emitted_at desc").Limit(limit)
	if component != "" {
		q = q.Where("component = ?", component)
	}
	if name != "" {
		q = q.Where("name = ?", name)
	}

	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
