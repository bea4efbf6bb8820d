package commands

import (
	"fmt"
	"learnwatch/lib/configutil"
	"learnwatch/lib/notify"
	"learnwatch/lib/platforms/learn/core"
	"learnwatch/lib/restyutil"
	"learnwatch/lib/telemetry"
	"time"
)

type HistoryConfig struct {
	// empty disables the history log
	Path string `json:"path"`
}

type WatchConfig struct {
	IntervalMinutes int `json:"interval_minutes"`
}

type Config struct {
	StorePath      string `json:"store_path"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	LegacyEncoding string `json:"legacy_encoding"`
	LoginAttempts  int    `json:"login_attempts"`
	// when set, every http exchange is written to a session directory here
	HttpDumpDir  string `json:"http_dump_dir"`
	HttpDumpKeep int    `json:"http_dump_keep"`

	History   HistoryConfig     `json:"history"`
	Smtp      notify.SmtpConfig `json:"smtp"`
	Watch     WatchConfig       `json:"watch"`
	Telemetry telemetry.Config  `json:"telemetry"`
}

var defaultConfig = Config{
	StorePath:      "userdata.dat",
	TimeoutSeconds: 10,
	LegacyEncoding: "gbk",
	LoginAttempts:  3,
	HttpDumpKeep:   5,
	Watch:          WatchConfig{IntervalMinutes: 30},
}

func readConfig(path string) (Config, error) {
	c, err := configutil.ReadWithDefaults(path, defaultConfig)
	if err != nil {
		return c, err
	}
	err = c.validate()
	if err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// validate rejects values mergo keeps because they are non-zero.
func (c Config) validate() error {
	switch {
	case c.Watch.IntervalMinutes <= 0:
		return fmt.Errorf("watch.interval_minutes must be positive, got %d", c.Watch.IntervalMinutes)
	case c.TimeoutSeconds <= 0:
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	case c.LoginAttempts <= 0:
		return fmt.Errorf("login_attempts must be positive, got %d", c.LoginAttempts)
	case c.HttpDumpKeep < 0:
		return fmt.Errorf("http_dump_keep must not be negative, got %d", c.HttpDumpKeep)
	}
	return nil
}

func (c Config) clientOptions() (core.ClientOptions, error) {
	opts := core.ClientOptions{
		Timeout:        time.Duration(c.TimeoutSeconds) * time.Second,
		LegacyEncoding: c.LegacyEncoding,
	}
	if c.HttpDumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(c.HttpDumpDir, c.HttpDumpKeep)
		if err != nil {
			return opts, err
		}
		opts.Dump = output
	}
	return opts, nil
}
