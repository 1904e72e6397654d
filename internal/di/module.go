package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/cakeshop-checkout/internal/adapter/events"
	"github.com/polkiloo/cakeshop-checkout/internal/adapter/mpesa"
	"github.com/polkiloo/cakeshop-checkout/internal/app"
	"github.com/polkiloo/cakeshop-checkout/internal/config"
	"github.com/polkiloo/cakeshop-checkout/internal/logger"
	"github.com/polkiloo/cakeshop-checkout/internal/pkg/auth"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/handlers"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/router"
	"github.com/polkiloo/cakeshop-checkout/internal/storage/postgres"
	"github.com/polkiloo/cakeshop-checkout/internal/usecase"
)

// Core wires configuration, storage, adapters and use cases without any runtime surface.
func Core(args []string, opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module(args),
		logger.Module,
		postgres.Module,
		mpesa.Module,
		events.Module,
		usecase.Module,
		fx.Provide(
			func(c mpesa.Client) usecase.PaymentGateway { return c },
			func(c mpesa.Client) usecase.CallbackDecoder { return c },
			func(p events.Publisher) usecase.EventPublisher { return p },
		),
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Module wires the full HTTP service with the expiry sweeper.
func Module(args []string, opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		Core(args),
		auth.Module,
		fx.Provide(
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.CheckoutFacade) handlers.StorefrontFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
