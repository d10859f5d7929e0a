package eventstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, store Store, e Event, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NoError(t, Record(context.Background(), store, e))
}

func TestProjectionRebuild(t *testing.T) {
	store := newStore(t)

	e, err := NewBuildStarted("ok", BuildStartedMeta{Site: "/site"})
	record(t, store, e, err)
	e, err = NewStageCompleted("ok", "rendering", 1500*time.Millisecond)
	record(t, store, e, err)
	e, err = NewBuildCompleted("ok", BuildCompletedData{Status: "success", Pages: 3, Overwritten: 1})
	record(t, store, e, err)

	e, err = NewBuildStarted("bad", BuildStartedMeta{})
	record(t, store, e, err)
	e, err = NewBuildFailed("bad", "resolving", "module not found")
	record(t, store, e, err)

	e, err = NewBuildStarted("running", BuildStartedMeta{})
	record(t, store, e, err)

	p := NewBuildHistoryProjection(store, 10)
	require.NoError(t, p.Rebuild(context.Background()))
	assert.False(t, p.LastSyncTime().IsZero())

	history := p.GetHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "bad", history[0].BuildID, "newest first")
	assert.Equal(t, "failed", history[0].Status)
	assert.Equal(t, "resolving", history[0].ErrorStage)
	assert.Equal(t, "module not found", history[0].ErrorMessage)

	ok, found := p.GetBuild("ok")
	require.True(t, found)
	assert.Equal(t, "success", ok.Status)
	assert.Equal(t, 3, ok.Pages)
	assert.Equal(t, 1, ok.Overwritten)
	assert.Equal(t, "/site", ok.Site)
	assert.Equal(t, 1500*time.Millisecond, ok.StageDurations["rendering"])
	require.NotNil(t, ok.CompletedAt)

	running, found := p.GetBuild("running")
	require.True(t, found)
	assert.Equal(t, "running", running.Status)

	assert.Equal(t, "bad", p.GetLastCompletedBuild().BuildID)
}

func TestProjectionBoundedHistory(t *testing.T) {
	store := newStore(t)
	p := NewBuildHistoryProjection(store, 2)
	for _, id := range []string{"a", "b", "c"} {
		e, err := NewBuildStarted(id, BuildStartedMeta{})
		require.NoError(t, err)
		p.Apply(e)
		e, err = NewBuildCompleted(id, BuildCompletedData{Status: "success"})
		require.NoError(t, err)
		p.Apply(e)
	}
	history := p.GetHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].BuildID)
	assert.Equal(t, "b", history[1].BuildID)
	_, found := p.GetBuild("a")
	assert.False(t, found, "evicted builds are pruned")
}

func TestProjectionIgnoresEventsWithoutBuildID(t *testing.T) {
	p := NewBuildHistoryProjection(nil, 0)
	p.Apply(&BuildEvent{kind: TypeBuildStarted})
	assert.Empty(t, p.GetHistory())
	assert.Nil(t, p.GetLastCompletedBuild())
}
