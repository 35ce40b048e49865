// Package config loads typed configuration structs from environment
// variables.
//
// Structs declare their settings with `env:` and `envDefault:` tags; Load
// parses the environment into them, reading a .env file once per process
// if one is present. MustLoad panics on failure for settings the process
// cannot start without.
//
//	type StoreConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg StoreConfig
//	config.MustLoad(&cfg)
package config
