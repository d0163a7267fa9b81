// Command whisperkit runs the transcription engine behind the HTTP status
// API. Every engine option is available as a flag; flags win over the
// engine section of the config file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/whisperkit/bootstrap"
	"github.com/kbukum/whisperkit/config"
	"github.com/kbukum/whisperkit/engine"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/observability"
	"github.com/kbukum/whisperkit/server"
)

const serviceName = "whisperkit"

// AppConfig is the service configuration read from config.yml.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server    server.Config        `yaml:"server" mapstructure:"server"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "whisperkit:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs, cli := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	var cfg AppConfig
	var loadOpts []config.LoaderOption
	if cli.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(cli.configFile))
	}
	if cli.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(cli.envFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, loadOpts...); err != nil {
		return err
	}

	flagOverrides, err := engineOverrides(fs, cli)
	if err != nil {
		return err
	}
	overrides := mergeOverrides(cfg.Engine, flagOverrides)
	engineCfg, err := config.Resolve(overrides)
	if err != nil {
		return err
	}
	if cli.printConfig {
		return printConfig(stdout, engineCfg)
	}

	_, explicitLevel := overrides["log_level"]
	cfg.UseEngineLogLevel(engineCfg, explicitLevel)
	cfg.Server = cfg.Server.FromEngine(engineCfg)

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return err
	}
	deps := engine.DefaultDeps()
	deps.Metrics = metrics
	deps.Logger = app.Logger.WithComponent("engine")
	holder := engine.NewHolder(deps)

	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(app.Name, app.Version, app.Components.HealthAll)
	srv.RegisterEngine(holder)

	if err := app.RegisterComponent(observability.NewComponent(cfg.Telemetry, app.Name, app.Version, cfg.Environment)); err != nil {
		return err
	}
	if err := app.RegisterComponent(engine.NewComponent(holder, overrides)); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}
	app.OnReady(func(context.Context) error {
		e, err := holder.Current()
		if err != nil {
			return err
		}
		info := e.Info()
		app.Logger.Info("Accepting sessions", logger.Fields(
			logger.FieldBackend, info.Backend,
			logger.FieldLanguage, info.TargetLanguage,
			logger.FieldVariant, info.Session,
			"warmed_up", info.WarmedUp,
			"addr", srv.Addr(),
		))
		return nil
	})
	return app.Run(ctx)
}

// printConfig writes the resolved engine configuration. The API key is
// never printed.
func printConfig(w io.Writer, cfg config.Config) error {
	snapshot := struct {
		Engine config.Config   `yaml:",inline"`
		Extra  map[string]any `yaml:"extra,omitempty"`
	}{Engine: cfg}
	if keys := cfg.ExtraKeys(); len(keys) > 0 {
		snapshot.Extra = make(map[string]any, len(keys))
		for _, k := range keys {
			snapshot.Extra[k], _ = cfg.Extra(k)
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshot); err != nil {
		return err
	}
	return enc.Close()
}
