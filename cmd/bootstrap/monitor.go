package bootstrap

import (
	"context"

	"checkout-service/internal/monitor"
	"checkout-service/internal/pkg/clock"
	"checkout-service/internal/pkg/config"

	"go.uber.org/fx"
)

var MonitorModule = fx.Module("monitor",
	fx.Provide(
		NewMonitorRegistry,
	),
)

// NewMonitorRegistry ties every slot monitor to the application
// lifecycle: no ticker outlives its checkout session, and none outlives
// the process.
func NewMonitorRegistry(lc fx.Lifecycle, clk clock.Clock, cfg config.Config) *monitor.Registry {
	registry := monitor.NewRegistry(clk, cfg.Checkout.MonitorInterval)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			registry.Shutdown()
			return nil
		},
	})

	return registry
}
