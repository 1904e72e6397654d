package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

func run(ctx context.Context, app *fx.App) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}
	return nil
}
