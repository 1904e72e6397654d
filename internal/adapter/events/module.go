package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
)

// Module provides the payment event publisher.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

type publisherParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPublisher(p publisherParams) Publisher {
	if len(p.Config.Kafka.Brokers) == 0 {
		p.Logger.Info("kafka brokers not configured, payment events disabled")
		return NoopPublisher{}
	}
	p.Logger.Info("publishing payment events",
		slog.Any("brokers", p.Config.Kafka.Brokers),
		slog.String("topic", p.Config.Kafka.PaymentsTopic),
	)
	return NewKafkaPublisher(p.Config.Kafka.Brokers, p.Config.Kafka.PaymentsTopic, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, publisher Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
}
