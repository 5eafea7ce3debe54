package gateway_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"deseos/internal/config"
	"deseos/internal/services/gateway"
)

var Module = fx.Provide(provideRegistry)

// provideRegistry registers every gateway with credentials. A registry without gateways still
// starts; checkouts then fail with a gateway error while direct payments keep working.
func provideRegistry(cfg *config.Config, log *zap.Logger) (*gateway.Registry, error) {
	var gateways []gateway.PaymentGateway

	if cfg.MercadoPago.AccessToken != "" {
		mp, err := gateway.NewMercadoPagoGateway(cfg.MercadoPago.AccessToken)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, mp)
	}

	if cfg.PayOS.ClientID != "" && cfg.PayOS.ApiKey != "" && cfg.PayOS.ChecksumKey != "" {
		po, err := gateway.NewPayOSGateway(cfg.PayOS.ClientID, cfg.PayOS.ApiKey, cfg.PayOS.ChecksumKey, cfg.DefaultCurrency)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, po)
	}

	if len(gateways) == 0 {
		log.Warn("no payment gateway credentials configured")
	}
	return gateway.NewRegistry(cfg.PaymentGateway, gateways...), nil
}
