//go:build wireinject
// +build wireinject

package di

import (
	"VixWatch/pkg/config"
	"VixWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideStateStore,
		ProvideAlertSink,
		ProvideQuoteFetcher,
		ProvideScheduler,
		ProvideHub,

		// Use cases
		ProvideMonitor,

		// Transport
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
