package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/client"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/registry"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/settings"
)

// env bundles the collaborators every subcommand needs.
type env struct {
	st  *settings.Registry
	reg *registry.Registry
	log zerolog.Logger
}

// newEnv opens settings, builds the API client from flags and
// configuration and wires the registry on top of the cache directory.
func newEnv(cmd *cli.Command) (*env, error) {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if cmd.Bool(verboseFlag.Name) {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.WarnLevel)
	}

	configDir := cmd.String(configDirFlag.Name)
	if configDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config directory: %w", err)
		}
		configDir = filepath.Join(base, "dmpcatalogue")
	}
	st, err := settings.Open(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}

	baseURL := cmd.String(urlFlag.Name)
	if baseURL == "" {
		baseURL = st.CatalogURL()
	}
	locale := cmd.String(localeFlag.Name)
	if locale == "" {
		locale = st.Locale()
	}

	api, err := client.New(baseURL,
		client.WithLocale(locale),
		client.WithTimeout(cmd.Duration(timeoutFlag.Name)),
		client.WithLogger(log),
		client.WithMiddleware(client.UserAgent("dmpcat")),
	)
	if err != nil {
		return nil, err
	}

	cacheDir := cmd.String(cacheDirFlag.Name)
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolving cache directory: %w", err)
		}
		cacheDir = filepath.Join(base, "dmpcatalogue")
	}
	reg, err := registry.New(cacheDir, api, st, registry.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return &env{st: st, reg: reg, log: log}, nil
}
