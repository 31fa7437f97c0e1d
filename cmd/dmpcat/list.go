package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/model"
)

var (
	collectionsFlag = &cli.BoolFlag{
		Name:    "collections",
		Aliases: []string{"c"},
		Usage:   "show dataset collections instead of categories",
	}
	ownersFlag = &cli.BoolFlag{
		Name:    "owners",
		Aliases: []string{"o"},
		Usage:   "group datasets by owner",
	}
	filterFlag = &cli.StringFlag{
		Name:  "filter",
		Usage: "free-text filter, all terms must match",
	}
	sourcesFlag = &cli.StringFlag{
		Name:  "sources",
		Usage: "restrict by datasource kind: all, network, files",
		Value: "all",
	}
)

func newListCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List catalogue content as a tree",
		Flags:  []cli.Flag{collectionsFlag, ownersFlag, filterFlag, sourcesFlag},
		Action: listAction,
	}
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	if err := e.reg.Initialize(ctx, false); err != nil {
		return err
	}

	view, err := buildView(cmd, e)
	if err != nil {
		return err
	}

	printTree(view, view.Model().Root(), 0)
	return nil
}

// buildView assembles the tree model and filtered view per the list
// and browse flags.
func buildView(cmd *cli.Command, e *env) (*model.FilterView, error) {
	tree := model.NewTreeModel(e.reg)
	if cmd.Bool(collectionsFlag.Name) {
		tree.SetShowCollections(true)
	} else if cmd.Bool(ownersFlag.Name) {
		tree.SetGroupMode(model.GroupOwners)
	}

	view := model.NewFilterView(tree, e.st.Locale())
	view.SetFilterString(cmd.String(filterFlag.Name))

	switch cmd.String(sourcesFlag.Name) {
	case "", "all":
		view.SetSourceFilter(model.ShowAll)
	case "network":
		view.SetSourceFilter(model.ShowNetworkSources)
	case "files":
		view.SetSourceFilter(model.ShowFiles)
	default:
		return nil, fmt.Errorf("unknown sources filter %q", cmd.String(sourcesFlag.Name))
	}
	return view, nil
}

func printTree(view *model.FilterView, id model.NodeID, depth int) {
	m := view.Model()
	for _, child := range view.VisibleChildren(id) {
		indent := strings.Repeat("  ", depth)
		if ds := m.DatasetFor(child); ds != nil {
			status := ""
			if ds.Status != "" {
				status = fmt.Sprintf(" [%s]", ds.Status)
			}
			fmt.Fprintf(os.Stdout, "%s%s (%s)%s\n", indent, ds.Title, ds.UID, status)
		} else {
			fmt.Fprintf(os.Stdout, "%s%s\n", indent, m.Label(child))
		}
		printTree(view, child, depth+1)
	}
}
