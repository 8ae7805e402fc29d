package bootstrap

import (
	"checkout-service/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	RedisModule,
	MonitorModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
