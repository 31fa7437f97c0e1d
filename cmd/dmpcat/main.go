package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

var (
	urlFlag = &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "catalogue API root (defaults to the configured one)",
	}
	localeFlag = &cli.StringFlag{
		Name:    "locale",
		Aliases: []string{"l"},
		Usage:   "catalogue locale (da, uk)",
	}
	configDirFlag = &cli.StringFlag{
		Name:  "config-dir",
		Usage: "settings directory",
	}
	cacheDirFlag = &cli.StringFlag{
		Name:  "cache-dir",
		Usage: "cache directory for server replies and thumbnails",
	}
	timeoutFlag = &cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Usage:   "HTTP client timeout (e.g. 30s, 1m)",
		Value:   30 * time.Second,
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "enable debug logging",
	}
)

func main() {
	cmd := &cli.Command{
		Name:  "dmpcat",
		Usage: "Browse the DMP data catalogue",
		Flags: []cli.Flag{
			urlFlag, localeFlag, configDirFlag, cacheDirFlag, timeoutFlag, verboseFlag,
		},
		Commands: []*cli.Command{
			newRefreshCommand(),
			newListCommand(),
			newFavoriteCommand(),
			newLayerCommand(),
			newDownloadCommand(),
			newBrowseCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
