// Package config loads runtime configuration for the docchat CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with DOCCHAT_ (see parseEnv). A dotenv
//     file is loaded first: the one named by -e/-env, or ./.env if present.
//     Variables already set in the process environment win over the file.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-d string   path of the local state database
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (text, json, console)
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://127.0.0.1:8000/jasp-api",
//	  "client_id": "00000000-0000-0000-0000-000000000000",
//	  "authority": "https://login.microsoftonline.com/common",
//	  "api_scope": "api://docchat/access_as_user",
//	  "redirect_url": "http://localhost:5173",
//	  "post_logout_redirect_url": "http://localhost:5173",
//	  "state_db_path": "~/.docchat/state.db",
//	  "state_key_path": "~/.docchat/device.key",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// Missing JSON keys leave the current value untouched.
//
// The state passphrase is deliberately not read from JSON or flags; set
// DOCCHAT_STATE_PASSPHRASE to seal local state with a passphrase instead of
// the generated device key.
package config
