package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/docchat/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "empty" so a partial file only overrides
// the keys it names.
type JsonConfig struct {
	APIBaseURL            *string `json:"api_base_url"`
	ClientID              *string `json:"client_id"`
	Authority             *string `json:"authority"`
	APIScope              *string `json:"api_scope"`
	RedirectURL           *string `json:"redirect_url"`
	PostLogoutRedirectURL *string `json:"post_logout_redirect_url"`
	StateDBPath           *string `json:"state_db_path"`
	StateKeyPath          *string `json:"state_key_path"`
	LogLevel              *string `json:"log_level"`
	LogFormat             *string `json:"log_format"`
	MaxFileMiB            *int64  `json:"max_file_mib"`
	MaxBatchMiB           *int64  `json:"max_batch_mib"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without such a flag nothing happens. Read or unmarshal
// errors panic; a broken config file is a startup error.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.ClientID, jc.ClientID)
	set(&cfg.Authority, jc.Authority)
	set(&cfg.APIScope, jc.APIScope)
	set(&cfg.RedirectURL, jc.RedirectURL)
	set(&cfg.PostLogoutRedirectURL, jc.PostLogoutRedirectURL)
	set(&cfg.StateDBPath, jc.StateDBPath)
	set(&cfg.StateKeyPath, jc.StateKeyPath)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.MaxFileMiB, jc.MaxFileMiB)
	set(&cfg.MaxBatchMiB, jc.MaxBatchMiB)
}
