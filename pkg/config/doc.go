// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
//
// Each config type is parsed once per process and cached, so independent
// components can load the same struct without re-reading the environment:
//
//	type ServerConfig struct {
//		Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
