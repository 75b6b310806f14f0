package publish

import (
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/ghostpub/pkg/core"
)

// Stage is a step of the publish pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageContentExtracted
	StageAuthenticated
	StageContentTransformed
	StageSubmitted
	StageLocalStateUpdated
	StageRelocated
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:               "idle",
	StageContentExtracted:   "content_extracted",
	StageAuthenticated:      "authenticated",
	StageContentTransformed: "content_transformed",
	StageSubmitted:          "submitted",
	StageLocalStateUpdated:  "local_state_updated",
	StageRelocated:          "relocated",
	StageFailed:             "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the stage by name in introspection output.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RunState describes the most recent publish run.
type RunState struct {
	ID         string     `json:"id"`
	Path       string     `json:"path"`
	Stage      Stage      `json:"stage"`
	PostID     string     `json:"post_id,omitempty"`
	URL        string     `json:"url,omitempty"`
	Created    bool       `json:"created,omitempty"`
	ErrorKind  core.Kind  `json:"error_kind,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// PublisherState exposes publisher activity for observability.
type PublisherState struct {
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	Recording bool      `json:"recording"`
	LastRun   *RunState `json:"last_run,omitempty"`
}

type runStats struct {
	runs     int
	failures int
	last     *RunState
}

func (p *Publisher) begin(r *run) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.runs++
	p.stats.last = &RunState{
		ID:        r.id,
		Path:      r.path,
		Stage:     StageIdle,
		StartedAt: p.now(),
	}
}

func (p *Publisher) end(res *Result, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.stats.last
	if last == nil || last.ID != res.RunID {
		return
	}
	finished := p.now()
	last.FinishedAt = &finished
	last.Stage = res.Stage
	last.PostID = res.PostID
	last.URL = res.URL
	last.Created = res.Created
	if res.Path != "" {
		last.Path = res.Path
	}
	if err != nil {
		p.stats.failures++
		last.ErrorKind = core.KindOf(err)
		last.Error = core.Summary(err)
	}
}

// State implements introspection.Introspectable.
func (p *Publisher) State() any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	state := PublisherState{
		Runs:      p.stats.runs,
		Failures:  p.stats.failures,
		Recording: p.recorder != nil,
	}
	if p.stats.last != nil {
		last := *p.stats.last
		state.LastRun = &last
	}
	return state
}

// ComponentType implements introspection.Component.
func (p *Publisher) ComponentType() string {
	return "publisher"
}

var _ introspection.Introspectable = (*Publisher)(nil)
var _ introspection.Component = (*Publisher)(nil)
