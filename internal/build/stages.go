package build

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/formidable/internal/metrics"
)

// StageName identifies a build stage.
type StageName string

// Build stages in execution order.
const (
	StagePreBuild  StageName = "pre_build"
	StageResolving StageName = "resolving"
	StageRendering StageName = "rendering"
	StagePostBuild StageName = "post_build"
)

// Stage is one step of a build pass.
type Stage func(ctx context.Context, run *Run) error

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the first error.
func runStages(ctx context.Context, run *Run, stages []StageDef, observer Observer, rec metrics.Recorder) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := &StageError{Kind: StageErrorCanceled, Stage: st.Name, Err: err}
			rec.IncStageResult(string(st.Name), metrics.ResultFailed)
			observer.OnStageComplete(st.Name, 0, se)
			return se
		}
		observer.OnStageStart(st.Name)
		t0 := time.Now()
		err := st.Fn(ctx, run)
		dur := time.Since(t0)
		run.Report.setStageDuration(st.Name, dur)
		rec.ObserveStageDuration(string(st.Name), dur)
		if err != nil {
			kind := StageErrorFatal
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				kind = StageErrorCanceled
			}
			se := &StageError{Kind: kind, Stage: st.Name, Err: err}
			rec.IncStageResult(string(st.Name), metrics.ResultFailed)
			observer.OnStageComplete(st.Name, dur, se)
			return se
		}
		rec.IncStageResult(string(st.Name), metrics.ResultSuccess)
		observer.OnStageComplete(st.Name, dur, nil)
	}
	return nil
}
