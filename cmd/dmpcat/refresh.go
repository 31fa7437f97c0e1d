package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/registry"
)

var forceFlag = &cli.BoolFlag{
	Name:    "force",
	Aliases: []string{"f"},
	Usage:   "refetch everything, ignoring the cache",
}

func newRefreshCommand() *cli.Command {
	return &cli.Command{
		Name:   "refresh",
		Usage:  "Fetch catalogue data into the local cache",
		Flags:  []cli.Flag{forceFlag},
		Action: refreshAction,
	}
}

func refreshAction(ctx context.Context, cmd *cli.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	e.reg.Subscribe(func(ev registry.Event) {
		if failed, ok := ev.(registry.RequestFailed); ok {
			fmt.Fprintln(os.Stderr, failed.Message)
		}
	})

	if err := e.reg.Initialize(ctx, cmd.Bool(forceFlag.Name)); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%d datasets, %d collections\n",
		e.reg.Datasets().Len(), e.reg.Collections().Len())
	return nil
}
