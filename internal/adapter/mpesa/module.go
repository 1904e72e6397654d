package mpesa

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
)

// Module exposes the gateway client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.Mpesa, p.Logger)
}
