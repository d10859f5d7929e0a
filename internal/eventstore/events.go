package eventstore

import (
	"encoding/json"
	"time"
)

// Event type names.
const (
	TypeBuildStarted   = "BuildStarted"
	TypeStageCompleted = "StageCompleted"
	TypeBuildCompleted = "BuildCompleted"
	TypeBuildFailed    = "BuildFailed"
)

// Event is one recorded fact about a build pass.
type Event interface {
	Seq() int64
	BuildID() string
	Type() string
	Timestamp() time.Time
	Payload() []byte
	Metadata() map[string]string
}

// BuildEvent is the Event produced by the constructors below and by stores.
// Seq is zero until the event has been stored.
type BuildEvent struct {
	seq      int64
	buildID  string
	kind     string
	at       time.Time
	payload  []byte
	metadata map[string]string
}

func (e *BuildEvent) Seq() int64                  { return e.seq }
func (e *BuildEvent) BuildID() string             { return e.buildID }
func (e *BuildEvent) Type() string                { return e.kind }
func (e *BuildEvent) Timestamp() time.Time        { return e.at }
func (e *BuildEvent) Payload() []byte             { return e.payload }
func (e *BuildEvent) Metadata() map[string]string { return e.metadata }

func newEvent(buildID, eventType string, payload any) (*BuildEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, marshalError(eventType, buildID, err)
	}
	return &BuildEvent{buildID: buildID, kind: eventType, at: time.Now(), payload: raw}, nil
}

// BuildStartedMeta describes the site a pass was started for.
type BuildStartedMeta struct {
	Site   string `json:"site"`
	Output string `json:"output"`
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, meta BuildStartedMeta) (Event, error) {
	return newEvent(buildID, TypeBuildStarted, meta)
}

// NewStageCompleted creates a StageCompleted event.
func NewStageCompleted(buildID, stage string, duration time.Duration) (Event, error) {
	return newEvent(buildID, TypeStageCompleted, map[string]any{
		"stage":       stage,
		"duration_ms": duration.Milliseconds(),
	})
}

// BuildCompletedData is the payload of a BuildCompleted event.
type BuildCompletedData struct {
	Status      string `json:"status"`
	Pages       int    `json:"pages"`
	Overwritten int    `json:"overwritten"`
	DurationMS  int64  `json:"duration_ms"`
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, data BuildCompletedData) (Event, error) {
	return newEvent(buildID, TypeBuildCompleted, data)
}

// NewBuildFailed creates a BuildFailed event.
func NewBuildFailed(buildID, stage, errorMsg string) (Event, error) {
	return newEvent(buildID, TypeBuildFailed, map[string]any{
		"stage": stage,
		"error": errorMsg,
	})
}
