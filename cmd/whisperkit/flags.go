package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kbukum/whisperkit/config"
)

// cliFlags are the flags that steer the process rather than the engine.
type cliFlags struct {
	configFile  string
	envFile     string
	printConfig bool
	options     map[string]string
}

// newFlagSet registers one flag per engine option, named after the option
// with dashes, plus the alias flags and the process flags.
func newFlagSet() (*pflag.FlagSet, *cliFlags) {
	fs := pflag.NewFlagSet("whisperkit", pflag.ContinueOnError)
	fs.SortFlags = false
	cli := &cliFlags{}

	fs.StringVarP(&cli.configFile, "config", "c", "", "service config file (config.yml)")
	fs.StringVar(&cli.envFile, "env-file", "", ".env file to load")
	fs.BoolVar(&cli.printConfig, "print-config", false, "print the resolved engine configuration as YAML and exit")
	fs.StringToStringVar(&cli.options, "option", nil, "pass-through engine option key=value, repeatable")

	defaults := config.Defaults()
	for _, key := range slices.Sorted(maps.Keys(defaults)) {
		name := flagName(key)
		usage := "engine option " + key
		switch v := defaults[key].(type) {
		case bool:
			fs.Bool(name, v, usage)
		case int:
			fs.Int(name, v, usage)
		case float64:
			fs.Float64(name, v, usage)
		case string:
			fs.String(name, v, usage)
		default:
			fs.String(name, "", usage+" (unset by default)")
		}
	}

	fs.Bool(flagName(config.AliasNoTranscription), false, "disable transcription, same as --transcription=false")
	fs.Bool(flagName(config.AliasNoVAD), false, "disable voice activity detection, same as --vad=false")
	fs.String(flagName(config.AliasLanguage), "", "alias for --lan")
	return fs, cli
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

var processFlags = []string{"config", "env-file", "print-config", "option"}

// engineOverrides returns the engine options the user set on the command
// line. Flags left at their default are not overrides.
func engineOverrides(fs *pflag.FlagSet, cli *cliFlags) (map[string]any, error) {
	overrides := make(map[string]any)
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil || slices.Contains(processFlags, f.Name) {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		var v any
		switch f.Value.Type() {
		case "bool":
			v, err = fs.GetBool(f.Name)
		case "int":
			v, err = fs.GetInt(f.Name)
		case "float64":
			v, err = fs.GetFloat64(f.Name)
		default:
			v = f.Value.String()
		}
		overrides[key] = v
	})
	if err != nil {
		return nil, err
	}

	for key, value := range cli.options {
		if _, known := overrides[key]; known {
			return nil, fmt.Errorf("option %q is set both as a flag and with --option", key)
		}
		overrides[key] = value
	}
	return overrides, nil
}

// mergeOverrides layers the command line over the config file. Keys are
// compared case-insensitively since viper lower-cases file keys.
func mergeOverrides(file, flags map[string]any) map[string]any {
	out := make(map[string]any, len(file)+len(flags))
	for k, v := range file {
		out[strings.ToLower(k)] = v
	}
	maps.Copy(out, flags)
	return out
}
