package commands

import (
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Name   string   `arg:"" help:"Pattern name"`
	Params []string `arg:"" optional:"" help:"Parameter values as key=value"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	values, err := parseParams(r.Params)
	if err != nil {
		return err
	}
	s, err := g.load(root)
	if err != nil {
		return err
	}
	if _, err := s.Routes(g.Ctx); err != nil {
		return err
	}
	url, err := s.Resolve(r.Name, values)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Out, url)
	return nil
}

func parseParams(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, ferrors.ValidationError("parameters must be key=value").
				WithContext("argument", arg).Build()
		}
		values[key] = value
	}
	return values, nil
}
