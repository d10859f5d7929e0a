package commands

import (
	"fmt"
	"text/tabwriter"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct{}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	s, err := g.load(root)
	if err != nil {
		return err
	}
	patterns, err := s.Routes(g.Ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPATTERN\tVIEW")
	for _, p := range patterns {
		view := "-"
		if m, ok := p.View().ModuleName(); ok {
			view = m
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name(), p.String(), view)
	}
	return w.Flush()
}
