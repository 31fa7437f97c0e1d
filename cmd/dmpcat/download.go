package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
)

var (
	dirFlag = &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "destination directory (defaults to the last used one)",
	}
	indexFlag = &cli.IntFlag{
		Name:  "index",
		Usage: "file source index for datasets with several files",
	}
)

func newDownloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download a dataset's file source",
		ArgsUsage: "<dataset-uid>",
		Flags:     []cli.Flag{dirFlag, indexFlag},
		Action:    downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: dataset uid")
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	if err := e.reg.Initialize(ctx, false); err != nil {
		return err
	}

	uid := cmd.Args().First()
	ds, ok := e.reg.Datasets().Get(uid)
	if !ok {
		return fmt.Errorf("unknown dataset %q", uid)
	}
	if !ds.HasFiles() {
		return fmt.Errorf("dataset %q has no file sources", uid)
	}

	index := int(cmd.Int(indexFlag.Name))
	if index < 0 || index >= len(ds.Files) {
		return fmt.Errorf("file index %d out of range, dataset has %d file(s)", index, len(ds.Files))
	}
	file := ds.Files[index]

	dir := cmd.String(dirFlag.Name)
	if dir == "" {
		dir = e.st.LastUsedDirectory()
	}
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return err
		}
	}

	dest := filepath.Join(dir, downloadName(uid, file.FileType))
	if err := e.reg.DownloadFile(ctx, file.URL, dest, func(done, total int64) {
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\r%d%%", done*100/total)
		}
	}); err != nil {
		fmt.Fprintln(os.Stderr)
		return err
	}
	fmt.Fprintln(os.Stderr)

	if err := e.st.SetLastUsedDirectory(dir); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, dest)
	return nil
}

// downloadName derives a file name from the dataset uid and the file
// source type.
func downloadName(uid, fileType string) string {
	name := strings.ReplaceAll(uid, ":", "-")
	if fileType == "" {
		return name
	}
	return name + "." + strings.ToLower(fileType)
}
