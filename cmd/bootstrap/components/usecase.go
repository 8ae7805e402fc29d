package components

import (
	"log/slog"

	"checkout-service/internal/monitor"
	"checkout-service/internal/pkg/clock"
	"checkout-service/internal/pkg/config"
	"checkout-service/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		NewCheckoutCommands,
	),
)

func NewCheckoutCommands(
	store usecase.CheckoutStore,
	promoValidator usecase.PromoValidator,
	walletReader usecase.WalletReader,
	orderGateway usecase.OrderGateway,
	monitors *monitor.Registry,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) (usecase.CheckoutCommands, error) {
	return usecase.NewCheckoutUseCase(store, promoValidator, walletReader, orderGateway, monitors, clk, cfg.Checkout, logger)
}
