package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/davinci-anonvote/election"
	"github.com/vocdoni/davinci-anonvote/log"
)

const (
	defaultVoters    = 32
	defaultYesShare  = 0.5
	defaultLogLevel  = "info"
	defaultLogOutput = "stdout"
)

// Config holds the application configuration
type Config struct {
	Election ElectionConfig
	Workers  int
	Log      LogConfig
}

// ElectionConfig describes the simulated election
type ElectionConfig struct {
	ID     string  `mapstructure:"id"`
	Domain string  `mapstructure:"domain"`
	Voters int     `mapstructure:"voters"`
	Yes    float64 `mapstructure:"yes"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// loadConfig loads configuration from flags, environment variables, and defaults
func loadConfig() (*Config, error) {
	v := viper.New()

	defaultWorkers := runtime.NumCPU()
	v.SetDefault("election.id", "")
	v.SetDefault("election.domain", election.DefaultKeyDomain)
	v.SetDefault("election.voters", defaultVoters)
	v.SetDefault("election.yes", defaultYesShare)
	v.SetDefault("workers", defaultWorkers)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)

	flag.StringP("election.id", "i", "", "election identifier in hex (random if empty)")
	flag.StringP("election.domain", "d", election.DefaultKeyDomain, "commitment key derivation domain")
	flag.IntP("election.voters", "n", defaultVoters, "number of eligible voters, all of them vote")
	flag.Float64P("election.yes", "y", defaultYesShare, "share of yes votes, between 0 and 1")
	flag.IntP("workers", "w", defaultWorkers, "number of ballots built in parallel")
	flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: anonvote-sim [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a simulated anonymous election and opens its tally.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the same name as flags,\n")
		fmt.Fprintf(os.Stderr, "  except for dots (.) which are replaced by underscores (_).\n")
		fmt.Fprintf(os.Stderr, "  For example, ANONVOTE_ELECTION_VOTERS or ANONVOTE_LOG_LEVEL\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # 1000 voters, 30%% of them voting yes\n")
		fmt.Fprintf(os.Stderr, "  anonvote-sim --election.voters=1000 --election.yes=0.3\n")
	}

	flag.CommandLine.SortFlags = false
	flag.Parse()

	v.SetEnvPrefix("ANONVOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.Election.Voters < 1 {
		return fmt.Errorf("at least one voter is required, got %d", cfg.Election.Voters)
	}
	if cfg.Election.Yes < 0 || cfg.Election.Yes > 1 {
		return fmt.Errorf("yes share must be between 0 and 1, got %v", cfg.Election.Yes)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("at least one worker is required, got %d", cfg.Workers)
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	return nil
}
