//go:build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/faiths/internal/config"
)

// Initialize builds an App from cfg. The returned cleanup closes storage,
// scripts and the logger in reverse order.
func Initialize(ctx context.Context, cfg config.Config) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
