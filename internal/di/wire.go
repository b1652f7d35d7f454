//go:build wireinject
// +build wireinject

package di

import (
	"PairPulse/pkg/config"
	"PairPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideResolveCache,
		ProvideQuoteSource,
		ProvideSamplePublisher,

		// Session and transport
		ProvideHub,
		ProvideSession,
		ProvidePalette,
		ProvideChartHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
