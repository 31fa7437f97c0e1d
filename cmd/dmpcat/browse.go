package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/urfave/cli/v3"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/catalogue"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/model"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/registry"
)

func newBrowseCommand() *cli.Command {
	return &cli.Command{
		Name:   "browse",
		Usage:  "Browse the catalogue interactively",
		Action: browseAction,
	}
}

// browser is the interactive catalogue view: a filtered dataset tree,
// a search field, a source filter and a detail pane.
type browser struct {
	app     *tview.Application
	tree    *tview.TreeView
	search  *tview.InputField
	sources *tview.DropDown
	details *tview.TextView
	status  *tview.TextView

	env  *env
	view *model.FilterView
	ctx  context.Context
}

func browseAction(ctx context.Context, cmd *cli.Command) error {
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

	b := &browser{
		app:  tview.NewApplication(),
		env:  e,
		view: view,
		ctx:  ctx,
	}
	b.setup()
	b.reload()

	e.reg.Subscribe(func(ev registry.Event) {
		switch ev := ev.(type) {
		case registry.Initialized:
			b.app.QueueUpdateDraw(func() {
				b.view.Model().Rebuild()
				b.reload()
				b.setStatus("catalogue refreshed")
			})
		case registry.RequestFailed:
			b.app.QueueUpdateDraw(func() { b.setStatus(ev.Message) })
		case registry.FavoritesChanged:
			b.app.QueueUpdateDraw(func() {
				b.view.Model().RepopulateFavorites(false)
				b.reload()
			})
		case registry.FileDownloaded:
			b.app.QueueUpdateDraw(func() { b.setStatus("downloaded " + ev.Path) })
		case registry.DownloadFailed:
			b.app.QueueUpdateDraw(func() { b.setStatus("download failed: " + strings.Join(ev.Errors, "; ")) })
		}
	})

	return b.app.Run()
}

func (b *browser) setup() {
	b.tree = tview.NewTreeView()
	b.tree.SetBorder(true).SetTitle(" Datasets ")
	b.tree.SetSelectedFunc(func(node *tview.TreeNode) {
		b.showDetails(node)
	})
	b.tree.SetChangedFunc(func(node *tview.TreeNode) {
		b.showDetails(node)
	})

	b.search = tview.NewInputField().SetLabel("Search: ")
	b.search.SetChangedFunc(func(text string) {
		b.view.SetFilterString(text)
		b.reload()
	})
	b.search.SetDoneFunc(func(key tcell.Key) {
		b.app.SetFocus(b.tree)
	})

	b.sources = tview.NewDropDown().SetLabel("Show: ")
	b.sources.SetOptions([]string{"All", "Map services", "Files"}, func(text string, index int) {
		switch index {
		case 1:
			b.view.SetSourceFilter(model.ShowNetworkSources)
		case 2:
			b.view.SetSourceFilter(model.ShowFiles)
		default:
			b.view.SetSourceFilter(model.ShowAll)
		}
		b.reload()
		b.app.SetFocus(b.tree)
	})
	b.sources.SetCurrentOption(0)

	b.details = tview.NewTextView().SetDynamicColors(true)
	b.details.SetBorder(true).SetTitle(" Details ")

	b.status = tview.NewTextView()
	b.status.SetText("  / search   f favorite   c collections   o owners   r refresh   q quit")

	top := tview.NewFlex().
		AddItem(b.search, 0, 2, false).
		AddItem(b.sources, 0, 1, false)
	main := tview.NewFlex().
		AddItem(b.tree, 0, 2, true).
		AddItem(b.details, 0, 1, false)
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 1, 0, false).
		AddItem(main, 0, 1, true).
		AddItem(b.status, 1, 0, false)

	b.app.SetRoot(layout, true)
	b.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if b.app.GetFocus() == b.search {
			return event
		}
		switch event.Rune() {
		case '/':
			b.app.SetFocus(b.search)
			return nil
		case 'f':
			b.toggleFavorite()
			return nil
		case 'c':
			m := b.view.Model()
			m.SetShowCollections(!m.ShowCollections())
			b.reload()
			return nil
		case 'o':
			m := b.view.Model()
			if m.GroupMode() == model.GroupOwners {
				m.SetGroupMode(model.GroupCategories)
			} else {
				m.SetGroupMode(model.GroupOwners)
			}
			b.reload()
			return nil
		case 'r':
			b.setStatus("refreshing…")
			go b.env.reg.Initialize(b.ctx, true)
			return nil
		case 'q':
			b.app.Stop()
			return nil
		}
		return event
	})
}

// reload rebuilds the tview tree from the filtered view.
func (b *browser) reload() {
	m := b.view.Model()
	root := tview.NewTreeNode("Catalogue")
	b.populate(root, m.Root())
	b.tree.SetRoot(root).SetCurrentNode(root)
}

func (b *browser) populate(parent *tview.TreeNode, id model.NodeID) {
	m := b.view.Model()
	for _, child := range b.view.VisibleChildren(id) {
		label := m.Label(child)
		node := tview.NewTreeNode(label).SetReference(child)
		if ds := m.DatasetFor(child); ds != nil {
			switch color := m.Foreground(child); color {
			case model.ColorUnavailable:
				node.SetColor(tcell.ColorRed)
			case model.ColorPartly:
				node.SetColor(tcell.ColorYellow)
			}
			if b.env.reg.IsFavorite(ds.UID) {
				node.SetText("★ " + label)
			}
		} else {
			node.SetColor(tcell.ColorAqua)
			node.SetExpanded(m.Kind(child) != model.KindCategory)
		}
		b.populate(node, child)
		parent.AddChild(node)
	}
}

func (b *browser) current() model.NodeID {
	node := b.tree.GetCurrentNode()
	if node == nil {
		return model.InvalidNode
	}
	id, ok := node.GetReference().(model.NodeID)
	if !ok {
		return model.InvalidNode
	}
	return id
}

func (b *browser) toggleFavorite() {
	ds := b.view.Model().DatasetFor(b.current())
	if ds == nil {
		return
	}
	if err := b.env.reg.ToggleFavorite(ds.UID); err != nil {
		b.setStatus(err.Error())
	}
}

func (b *browser) showDetails(node *tview.TreeNode) {
	id, ok := node.GetReference().(model.NodeID)
	if !ok {
		b.details.SetText("")
		return
	}
	m := b.view.Model()

	if col := m.CollectionFor(id); col != nil {
		b.details.SetText(fmt.Sprintf("[yellow]%s[-]\n\n%s\n\n%d dataset(s)",
			col.Title, col.Description, len(col.Datasets)))
		return
	}
	ds := m.DatasetFor(id)
	if ds == nil {
		b.details.SetText(m.Label(id))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[yellow]%s[-]\n%s\n\n", ds.Title, ds.UID)
	if ds.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", ds.Description)
	}
	if ds.Status != "" {
		fmt.Fprintf(&sb, "Status: %s\n", ds.Status)
	}
	if len(ds.Owners) > 0 {
		fmt.Fprintf(&sb, "Owners: %s\n", strings.Join(ds.Owners, ", "))
	}
	if len(ds.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(ds.Tags, ", "))
	}
	if layer := ds.Layer(catalogue.Protocol(""), b.env.st); layer != nil {
		fmt.Fprintf(&sb, "\nLayer (%s):\n%s\n", layer.Provider, layer.URI)
	}
	for _, file := range ds.Files {
		fmt.Fprintf(&sb, "\nFile (%s):\n%s\n", file.FileType, file.URL)
	}
	b.details.SetText(sb.String())
}

func (b *browser) setStatus(text string) {
	b.status.SetText("  " + text)
}
