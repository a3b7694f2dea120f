package reconcile

import (
	"time"

	"github.com/aws-samples/amazon-connect-cicd-workshop/health"
)

// Report summarizes one run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Desired    int `json:"desired"`
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Renamed    int `json:"renamed"`
	Parameters int `json:"parameters"`

	MappingEntries int    `json:"mapping_entries"`
	ArtifactSHA256 string `json:"artifact_sha256,omitempty"`
	QueuesSkipped  bool   `json:"queues_skipped"`
	FunctionName   string `json:"function_name,omitempty"`
	Deployed       bool   `json:"deployed"`

	Stages []StageResult  `json:"stages"`
	Health *health.Status `json:"health,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Succeeded reports whether the run reached the end of the pipeline.
func (r *Report) Succeeded() bool {
	return r.Error == "" && r.Deployed
}

// Stage returns the result of the named stage, if it ran.
func (r *Report) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageResult{}, false
}

func (r *run) report(started, finished time.Time, stages []StageResult, status health.Status) *Report {
	rep := &Report{
		RunID:          r.id,
		StartedAt:      started,
		FinishedAt:     finished,
		Desired:        len(r.desired),
		Created:        r.created,
		Updated:        r.updated,
		Renamed:        r.renamed,
		Parameters:     r.published,
		MappingEntries: r.manifest.Len(),
		FunctionName:   r.functionName,
		Deployed:       r.deployed != nil,
		Stages:         stages,
		Health:         &status,
	}
	if r.snapshot != nil {
		rep.QueuesSkipped = r.snapshot.QueuesSkipped
	}
	if r.artifact != nil {
		rep.ArtifactSHA256 = r.artifact.SHA256
	}
	return rep
}
