package domain

import "context"

// Item is a stored key/value record.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ItemStore persists items and audit entries.
type ItemStore interface {
	CreateItem(ctx context.Context, name, description string) (Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	LogAudit(ctx context.Context, entry AuditEntry) error
	Close() error
}
