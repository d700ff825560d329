package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

const (
	envPrefix = "EWSFREEBUSY"

	defaultTimeoutSeconds = 30
	defaultMetricsAddr    = ":9090"
)

// Runtime is the resolved configuration shared by all commands.
type Runtime struct {
	ConfigFile string

	Endpoint string
	Token    string

	TimeZone             string
	Mailbox              string
	MergeIntervalMinutes int
	IncludeTentative     bool

	Timeout     time.Duration
	MetricsAddr string
}

// setting maps a viper key to its environment variable suffix and default.
type setting struct {
	key      string
	env      string
	fallback any
}

var settings = []setting{
	{key: "endpoint", env: "ENDPOINT", fallback: ""},
	{key: "token", env: "TOKEN", fallback: ""},
	{key: "timezone", env: "TIMEZONE", fallback: availability.DefaultTimeZone},
	{key: "mailbox", env: "MAILBOX", fallback: availability.DefaultMailbox},
	{key: "merge_interval_minutes", env: "MERGE_INTERVAL_MINUTES", fallback: availability.DefaultMergeIntervalMinutes},
	{key: "include_tentative", env: "INCLUDE_TENTATIVE", fallback: true},
	{key: "timeout_seconds", env: "TIMEOUT_SECONDS", fallback: defaultTimeoutSeconds},
	{key: "metrics_addr", env: "METRICS_ADDR", fallback: defaultMetricsAddr},
}

// Load resolves the configuration. Values come from, in order of precedence,
// EWSFREEBUSY_* environment variables, the env file and built-in defaults.
// The env file defaults to $XDG_CONFIG_HOME/ewsfreebusy/ewsfreebusy.env and
// may use prefixed or bare keys. A missing env file is not an error.
func Load() (Runtime, error) {
	configFile, err := configFilePath()
	if err != nil {
		return Runtime{}, err
	}

	fileValues, err := readEnvFile(configFile)
	if err != nil {
		return Runtime{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for _, s := range settings {
		_ = v.BindEnv(s.key, envPrefix+"_"+s.env)
		v.SetDefault(s.key, s.fallback)
		if value, ok := lookupFileValue(fileValues, s.env); ok {
			v.SetDefault(s.key, value)
		}
	}

	mergeInterval := v.GetInt("merge_interval_minutes")
	if mergeInterval <= 0 {
		mergeInterval = availability.DefaultMergeIntervalMinutes
	}

	timeoutSeconds := v.GetInt("timeout_seconds")
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultTimeoutSeconds
	}

	timeZone := strings.TrimSpace(v.GetString("timezone"))
	if timeZone == "" {
		timeZone = availability.DefaultTimeZone
	}

	mailbox := strings.TrimSpace(v.GetString("mailbox"))
	if mailbox == "" {
		mailbox = availability.DefaultMailbox
	}

	metricsAddr := strings.TrimSpace(v.GetString("metrics_addr"))
	if metricsAddr == "" {
		metricsAddr = defaultMetricsAddr
	}

	return Runtime{
		ConfigFile:           configFile,
		Endpoint:             strings.TrimSpace(v.GetString("endpoint")),
		Token:                strings.TrimSpace(v.GetString("token")),
		TimeZone:             timeZone,
		Mailbox:              mailbox,
		MergeIntervalMinutes: mergeInterval,
		IncludeTentative:     v.GetBool("include_tentative"),
		Timeout:              time.Duration(timeoutSeconds) * time.Second,
		MetricsAddr:          metricsAddr,
	}, nil
}

// Params returns request parameters for the day containing now, using the
// configured mailbox, timezone and merge interval.
func (r Runtime) Params(now time.Time) availability.Params {
	params := availability.DefaultParams(now)
	params.TimeZone = r.TimeZone
	params.Mailbox = r.Mailbox
	params.MergeIntervalMinutes = r.MergeIntervalMinutes
	return params
}

// RequireEndpoint returns an error when no EWS endpoint is configured.
func (r Runtime) RequireEndpoint() error {
	if r.Endpoint == "" {
		return fmt.Errorf("no EWS endpoint configured: set %s_ENDPOINT or add ENDPOINT to %s", envPrefix, r.ConfigFile)
	}
	return nil
}

func configFilePath() (string, error) {
	if configFile := strings.TrimSpace(os.Getenv(envPrefix + "_CONFIG_FILE")); configFile != "" {
		return configFile, nil
	}

	xdgConfig := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "ewsfreebusy", "ewsfreebusy.env"), nil
}

func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

func lookupFileValue(values map[string]string, name string) (string, bool) {
	if value, ok := values[envPrefix+"_"+name]; ok {
		return value, true
	}
	value, ok := values[name]
	return value, ok
}
