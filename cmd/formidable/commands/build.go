package commands

import (
	"fmt"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Pages bool `help:"List every written page after the summary"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	s, err := g.load(root)
	if err != nil {
		return err
	}

	// Provide friendly user-facing messages on stdout.
	_, _ = fmt.Fprintln(g.Out, "Starting formidable build")
	report, err := s.Build(g.Ctx)
	if report != nil {
		_, _ = fmt.Fprintln(g.Out, report.Summary())
		if b.Pages {
			for _, p := range report.PagesSnapshot() {
				_, _ = fmt.Fprintf(g.Out, "  %s -> %s\n", p.URL, p.Path)
			}
		}
	}
	if err != nil {
		_, _ = fmt.Fprintln(g.Out, "Build failed")
		return err
	}
	_, _ = fmt.Fprintln(g.Out, "Build completed successfully")
	return nil
}
