package storage

import (
	"context"

	"deal-search/models"
)

// LeadWriter is the interface any lead archive backend must satisfy.
type LeadWriter interface {
	WriteLead(ctx context.Context, lead *models.Lead) error
	Close() error
}
