package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"github.com/polkiloo/cakeshop-checkout/internal/di"
	"github.com/polkiloo/cakeshop-checkout/internal/pkg/auth"
	"github.com/polkiloo/cakeshop-checkout/internal/usecase"
)

// Configuration flags are parsed by the config package, so cobra hands them over untouched.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve [config flags]",
		Short:              "Run the HTTP API and the expiry sweeper",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := fx.New(
				fx.Supply(fx.Annotate(ctx, fx.As(new(context.Context)))),
				di.Module(args),
			)
			return run(ctx, app)
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "sweep [config flags]",
		Short:              "Expire overdue mobile money payments once and exit",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var sweeps *usecase.SweepUseCase
			app := fx.New(
				fx.Supply(fx.Annotate(ctx, fx.As(new(context.Context)))),
				di.Core(args),
				fx.Populate(&sweeps),
			)
			if err := app.Start(ctx); err != nil {
				return fmt.Errorf("start: %w", err)
			}
			defer func() { _ = app.Stop(context.WithoutCancel(ctx)) }()

			count, err := sweeps.Sweep(ctx)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d orders\n", count)
			return nil
		},
	}
}

func hashKeyCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-admin-key [key]",
		Short: "Print the bcrypt hash to use as ADMIN_KEY_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			hash, err := auth.HashKey(key, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
