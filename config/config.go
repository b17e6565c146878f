package config

// Package config holds the immutable reporting configuration, read from
// the environment exactly once at startup and passed explicitly to the
// components that need it.

import (
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config identifies the reporting site and the run being reported. Values
// are snapshotted by FromEnv and never change afterwards.
type Config struct {
	// DashboardURL is the HTTPS endpoint records are posted to.
	DashboardURL string
	// SiteID identifies the reporting site to the dashboard.
	SiteID string
	// SiteToken authenticates the reporting site.
	SiteToken string
	// RunID groups every event of one reporting series.
	RunID string
	// Branch is the git branch under test.
	Branch string
	// IMNumber is the tracking number attached to environment-discovery
	// events.
	IMNumber string
	// Maintainer is the contact attached to environment-discovery events.
	Maintainer string
	// TestsGroup labels which suite a command belongs to, as provided;
	// consumers lower-case it for the wire.
	TestsGroup string
}

// FromEnv reads the configuration from the process environment. A local
// .env file is merged in first when present, which keeps ad-hoc runs
// outside CI workable; it never overrides variables CI already set.
func FromEnv(logger zerolog.Logger) Config {
	if err := godotenv.Load(); err == nil {
		logger.Debug().Msg("Loaded .env file")
	}

	cfg := Config{
		DashboardURL: getEnv("SDK_DASHBOARD_URL", os.Getenv("TESTING_HOST")),
		SiteID:       os.Getenv("SITE_ID"),
		SiteToken:    os.Getenv("SDK_DASHBOARD_TOKEN"),
		RunID:        os.Getenv("CI_PIPELINE_ID"),
		Branch:       os.Getenv("CI_COMMIT_BRANCH"),
		IMNumber:     os.Getenv("IM_NUMBER"),
		Maintainer:   os.Getenv("MAINTAINER"),
		TestsGroup:   os.Getenv("TESTS_GROUP"),
	}

	if cfg.RunID == "" {
		// Outside CI there is no pipeline id; generate one so the
		// series is still attributable on the dashboard.
		cfg.RunID = uuid.NewString()
		logger.Debug().Str("run_id", cfg.RunID).Msg("Generated run id")
	}

	if cfg.Branch == "" {
		if branch, err := gitBranch(); err == nil {
			cfg.Branch = branch
		}
	}

	return cfg
}

// getEnv returns the value of key, or fallback when key is unset or empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
