package config

import "time"

type RaffleConfig struct {
	DrawLockTTL        time.Duration `yaml:"draw_lock_ttl"`
	ClaimSweepInterval time.Duration `yaml:"claim_sweep_interval"`
	SnapshotCacheTTL   time.Duration `yaml:"snapshot_cache_ttl"`
	UserDirectoryURL   string        `yaml:"user_directory_url"`
}

func loadRaffleConfig() *RaffleConfig {
	return &RaffleConfig{
		DrawLockTTL:        getEnvAsDuration("RAFFLE_DRAW_LOCK_TTL", 2*time.Minute),
		ClaimSweepInterval: getEnvAsDuration("RAFFLE_CLAIM_SWEEP_INTERVAL", 1*time.Hour),
		SnapshotCacheTTL:   getEnvAsDuration("RAFFLE_SNAPSHOT_CACHE_TTL", 5*time.Minute),
		UserDirectoryURL:   getEnv("RAFFLE_USER_DIRECTORY_URL", ""),
	}
}
