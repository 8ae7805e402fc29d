package components

import (
	"log/slog"

	"checkout-service/internal/infra/checkoutstore"
	"checkout-service/internal/infra/orderclient"
	"checkout-service/internal/infra/promoclient"
	"checkout-service/internal/infra/walletclient"
	"checkout-service/internal/pkg/clock"
	"checkout-service/internal/pkg/config"
	"checkout-service/internal/usecase"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewCheckoutStore,
		NewPromoValidator,
		NewWalletReader,
		NewOrderGateway,
	),
)

func NewCheckoutStore(client *redis.Client, clk clock.Clock, cfg config.Config, logger *slog.Logger) usecase.CheckoutStore {
	return checkoutstore.New(client, clk, cfg.Checkout.ScopeTTL, logger)
}

func NewPromoValidator(cfg config.Config) usecase.PromoValidator {
	return promoclient.New(cfg.Collaborator.PromoServiceURL, cfg.Collaborator.RequestTimeout)
}

func NewWalletReader(cfg config.Config) usecase.WalletReader {
	return walletclient.New(cfg.Collaborator.WalletServiceURL, cfg.Collaborator.RequestTimeout)
}

func NewOrderGateway(cfg config.Config) usecase.OrderGateway {
	return orderclient.New(cfg.Collaborator.OrderServiceURL, cfg.Collaborator.RequestTimeout)
}
