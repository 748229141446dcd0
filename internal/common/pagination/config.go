package pagination

import "newsreader/pkg/config"

type Config struct {
	DefaultPage  int // 1
	DefaultLimit int // NEWS_PAGE_SIZE, 15 unless configured
	MaxLimit     int // the upstream pageSize ceiling
}

func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 15,
		MaxLimit:     100,
	}
}

// LoadFromEnv reads NEWS_PAGE_SIZE. Out-of-range sizes fall back to the default.
func LoadFromEnv() Config {
	cfg := DefaultConfig()
	res := config.LoadInt("NEWS_PAGE_SIZE", cfg.DefaultLimit, config.IntRange(1, cfg.MaxLimit))
	cfg.DefaultLimit = res.Value
	return cfg
}
