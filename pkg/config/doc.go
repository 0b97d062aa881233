// Package config loads typed configuration from the environment.
//
// It combines github.com/joho/godotenv, for optional .env files, with
// github.com/caarlos0/env/v11, which fills structs from `env` tags. Every
// infrastructure package of this module exposes such a struct (pg.Config,
// redis.Config, mongo.Config, httpserver.Config, tenancy.Config):
//
//	config.MustLoadEnv() // optional .env in the working directory
//
//	var tenants tenancy.Config
//	if err := config.Load(&tenants); err != nil {
//		log.Fatal(err)
//	}
//
// Load parses each configuration type once per process and hands out copies
// afterwards. ForceReload and ResetCache drop cached values, which tests use
// after changing the environment. Parse reads from an explicit map instead of
// the process environment and skips the cache entirely.
package config
