package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/formidable/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing settings file"`
	Output string `short:"o" name:"output" help:"Directory for the generated settings file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Settings
	switch {
	case i.Output != "":
		path = filepath.Join(i.Output, config.DefaultFile)
	case path == "":
		path = config.DefaultFile
	}
	return RunInit(g, path, i.Force)
}

func RunInit(g *Global, path string, force bool) error {
	// Provide friendly user-facing messages on stdout.
	_, _ = fmt.Fprintln(g.Out, "Initializing formidable site")
	_, _ = fmt.Fprintf(g.Out, "Writing settings to %s\n", path)
	if err := config.Init(path, force); err != nil {
		_, _ = fmt.Fprintln(g.Out, "Initialization failed")
		return err
	}
	_, _ = fmt.Fprintln(g.Out, "initialized successfully")
	return nil
}
