// Package config resolves engine options and loads service configuration.
//
// Resolve turns a loose override map into a typed, validated Config:
//
//	cfg, err := config.Resolve(map[string]any{
//	    "model":    "small",
//	    "language": "de",  // alias of lan
//	    "no_vad":   true,  // alias of vad=false
//	})
//
// Every option has a default (see Defaults). Unknown keys are accepted and
// kept aside; read them with Config.Extra.
//
// LoadConfig reads a service's config.yml and .env with viper and godotenv.
// The engine section of that file is the override map for Resolve.
package config
