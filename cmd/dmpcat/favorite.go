package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func newFavoriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "favorite",
		Usage:     "Toggle a dataset as favorite, or list favorites",
		ArgsUsage: "[dataset-uid]",
		Action:    favoriteAction,
	}
}

func favoriteAction(ctx context.Context, cmd *cli.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	if cmd.Args().Len() == 0 {
		for _, uid := range e.reg.Favorites() {
			fmt.Fprintln(os.Stdout, uid)
		}
		return nil
	}
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected at most 1 argument: dataset uid")
	}

	uid := cmd.Args().First()
	if err := e.reg.ToggleFavorite(uid); err != nil {
		return err
	}
	if e.reg.IsFavorite(uid) {
		fmt.Fprintf(os.Stdout, "added %s to favorites\n", uid)
	} else {
		fmt.Fprintf(os.Stdout, "removed %s from favorites\n", uid)
	}
	return nil
}
