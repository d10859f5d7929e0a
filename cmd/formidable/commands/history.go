package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/formidable/internal/eventstore"
	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
	"git.home.luguber.info/inful/formidable/internal/plugin/builtin"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to show" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	s, err := g.load(root)
	if err != nil {
		return err
	}
	v, ok := s.API().Get(builtin.HistoryAPI)
	if !ok {
		return ferrors.ConfigError("build history is not enabled").
			WithContext("plugin", "history").Build()
	}
	projection, ok := v.(*eventstore.BuildHistoryProjection)
	if !ok {
		return ferrors.InternalError("unexpected history API value").Build()
	}

	builds := projection.GetHistory()
	if h.Limit > 0 && len(builds) > h.Limit {
		builds = builds[:h.Limit]
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No builds recorded")
		return nil
	}

	w := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BUILD\tSTATUS\tSTARTED\tDURATION\tPAGES\tERROR")
	for _, b := range builds {
		errMsg := "-"
		if b.ErrorMessage != "" {
			errMsg = fmt.Sprintf("%s: %s", b.ErrorStage, b.ErrorMessage)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			b.BuildID, b.Status, b.StartedAt.Format(time.RFC3339), b.Duration.Truncate(time.Millisecond), b.Pages, errMsg)
	}
	return w.Flush()
}
