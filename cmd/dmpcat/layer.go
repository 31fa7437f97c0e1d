package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/catalogue"
)

var protocolFlag = &cli.StringFlag{
	Name:    "protocol",
	Aliases: []string{"p"},
	Usage:   "request a specific protocol (wfs, wmts, wms) instead of the configured preference order",
}

func newLayerCommand() *cli.Command {
	return &cli.Command{
		Name:      "layer",
		Usage:     "Print the layer construction URI for a dataset",
		ArgsUsage: "<dataset-uid>",
		Flags:     []cli.Flag{protocolFlag},
		Action:    layerAction,
	}
}

func layerAction(ctx context.Context, cmd *cli.Command) error {
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

	var protocol catalogue.Protocol
	switch cmd.String(protocolFlag.Name) {
	case "":
	case "wfs":
		protocol = catalogue.WFS
	case "wmts":
		protocol = catalogue.WMTS
	case "wms":
		protocol = catalogue.WMS
	default:
		return fmt.Errorf("unknown protocol %q", cmd.String(protocolFlag.Name))
	}

	layer := ds.Layer(protocol, e.st)
	if layer == nil {
		return fmt.Errorf("dataset %q has no usable datasource", uid)
	}

	fmt.Fprintf(os.Stdout, "provider: %s\n", layer.Provider)
	fmt.Fprintf(os.Stdout, "title: %s\n", layer.Title)
	fmt.Fprintf(os.Stdout, "uri: %s\n", layer.URI)
	return nil
}
