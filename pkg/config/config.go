// Package config loads runtime configuration from the environment and an
// optional .env file.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env    string
	Port   int
	Log    LogConfig
	Solver SolverConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig carries the generation policy knobs. The coordination
// constraints default off because dataset conventions differ on whether
// they are enforced.
type SolverConfig struct {
	Timeout             time.Duration
	PermissiveRetry     bool
	RelaxUnavailability bool
	SharedLectureSlot   bool
	ElectivePairs       [][2]string
}

// Load reads config from the environment, after loading `.env` when
// present. Elective pairs are given as "COURSE1:COURSE2" entries separated
// by commas.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", 3001)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("SOLVER_TIMEOUT", "120s")
	v.SetDefault("SOLVER_PERMISSIVE_RETRY", true)
	v.SetDefault("SOLVER_RELAX_UNAVAILABILITY", true)
	v.SetDefault("SOLVER_SHARED_LECTURE_SLOT", false)
	v.SetDefault("SOLVER_ELECTIVE_PAIRS", "")

	cfg := &Config{
		Env:  v.GetString("APP_ENV"),
		Port: v.GetInt("PORT"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Solver: SolverConfig{
			Timeout:             v.GetDuration("SOLVER_TIMEOUT"),
			PermissiveRetry:     v.GetBool("SOLVER_PERMISSIVE_RETRY"),
			RelaxUnavailability: v.GetBool("SOLVER_RELAX_UNAVAILABILITY"),
			SharedLectureSlot:   v.GetBool("SOLVER_SHARED_LECTURE_SLOT"),
			ElectivePairs:       ParseElectivePairs(v.GetString("SOLVER_ELECTIVE_PAIRS")),
		},
	}
	return cfg, nil
}

// ParseElectivePairs parses "A:B,C:D" into course id pairs; malformed
// entries are skipped.
func ParseElectivePairs(value string) [][2]string {
	entries := strings.Split(value, ",")
	pairs := [][2]string{}
	for _, entry := range entries {
		parts := lo.Map(strings.Split(entry, ":"), func(s string, _ int) string { return strings.TrimSpace(s) })
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			pairs = append(pairs, [2]string{parts[0], parts[1]})
		}
	}
	return pairs
}
