package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TEMPCHART_"

// LoadDotEnv loads .env files into the process environment. A missing file
// is not an error. Variables already set are not overwritten.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
}

// ApplyEnv overrides cfg from TEMPCHART_* variables. Malformed numbers and
// durations are reported as CONFIG_INVALID.
func ApplyEnv(cfg *Config) error {
	setString(&cfg.Chart.Preset, "PRESET")
	setString(&cfg.Chart.Orientation, "ORIENTATION")
	setString(&cfg.Output.Format, "FORMAT")
	setString(&cfg.Output.Root, "OUTPUT_ROOT")
	setString(&cfg.Output.Dir, "OUTPUT_DIR")
	setString(&cfg.Server.Host, "SERVER_HOST")
	setString(&cfg.Storage.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.Region, "S3_REGION")
	setString(&cfg.Storage.Prefix, "S3_PREFIX")

	if v, ok := lookup("DAYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envInvalid("DAYS", v, err)
		}
		cfg.Chart.Days = n
	}
	if v, ok := lookup("SERVER_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envInvalid("SERVER_PORT", v, err)
		}
		cfg.Server.Port = n
	}
	if v, ok := lookup("SCHEDULE_EVERY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envInvalid("SCHEDULE_EVERY", v, err)
		}
		cfg.Schedule.Every = d
		cfg.Schedule.Enabled = d > 0
	}
	if v, ok := lookup("S3_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envInvalid("S3_ENABLED", v, err)
		}
		cfg.Storage.Enabled = b
	}
	return nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func envInvalid(key, value string, err error) error {
	return cerrors.ConfigWrap(err, cerrors.ErrConfigInvalid, "invalid environment override").
		WithContext("variable", EnvPrefix+key).
		WithContext("value", value)
}
