package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dmitrijs2005/docchat/internal/flagx"
)

// EnvPrefix is prepended to every variable name, e.g. DOCCHAT_API_BASE_URL.
const EnvPrefix = "DOCCHAT"

// parseEnv loads a dotenv file into the process environment and then
// overlays Config with DOCCHAT_* variables. Unset variables keep the current
// value. An explicitly requested dotenv file that cannot be read panics; a
// missing ./.env is ignored.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		panic(err)
	}

	// Keep the passphrase out of the environment of anything spawned later.
	_ = os.Unsetenv(EnvPrefix + "_STATE_PASSPHRASE")
}
