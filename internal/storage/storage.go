package storage

import "campaignScope/internal/model"

// Storage defines a sink for normalized events.
type Storage interface {
	PutEventBatch(events []model.Event) error
}
