package config

import "go.uber.org/fx"

// Module exposes configuration loaded from args to fx graphs.
func Module(args []string) fx.Option {
	return fx.Provide(func() (*Config, error) {
		return Load(args)
	})
}
