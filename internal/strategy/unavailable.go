package strategy

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/listing"
)

// Unavailable stands in for a strategy whose capability could not be set up.
// It always returns zero records.
type Unavailable struct {
	name   string
	reason string
	logger *zap.Logger
}

// NewUnavailable creates a placeholder reporting name and the setup failure reason.
func NewUnavailable(name, reason string, logger *zap.Logger) *Unavailable {
	return &Unavailable{name: name, reason: reason, logger: named(logger, name)}
}

// Name implements listing.Strategy.
func (u *Unavailable) Name() string { return u.name }

// Reason explains why the real strategy is missing.
func (u *Unavailable) Reason() string { return u.reason }

// Execute implements listing.Strategy.
func (u *Unavailable) Execute(context.Context, string, int) ([]listing.Record, error) {
	u.logger.Debug("strategy unavailable", zap.String("reason", u.reason))
	return []listing.Record{}, nil
}
