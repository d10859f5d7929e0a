package build

import "time"

// Observer receives callbacks around stage execution and the build lifecycle.
// OnBuildComplete is called for failed builds too.
type Observer interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, err error)
	OnBuildComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(StageName)                          {}
func (NoopObserver) OnStageComplete(StageName, time.Duration, error) {}
func (NoopObserver) OnBuildComplete(*Report)                         {}

// observers fans callbacks out in registration order.
type observers []Observer

func (o observers) OnStageStart(stage StageName) {
	for _, obs := range o {
		obs.OnStageStart(stage)
	}
}

func (o observers) OnStageComplete(stage StageName, d time.Duration, err error) {
	for _, obs := range o {
		obs.OnStageComplete(stage, d, err)
	}
}

func (o observers) OnBuildComplete(report *Report) {
	for _, obs := range o {
		obs.OnBuildComplete(report)
	}
}
