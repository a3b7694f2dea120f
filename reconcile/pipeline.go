package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
	"github.com/aws-samples/amazon-connect-cicd-workshop/health"
	"github.com/aws-samples/amazon-connect-cicd-workshop/metric"
)

// Stage names, in run order.
const (
	StageResolve = "resolve-parameters"
	StageFetch   = "fetch-desired"
	StageInspect = "inspect-live"
	StageCreate  = "create"
	StageRelist  = "relist"
	StageUpdate  = "update"
	StageRename  = "rename"
	StagePublish = "publish"
	StageBuild   = "build"
	StageUpload  = "upload"
	StageDeploy  = "deploy"
)

// Outcome tags a stage result.
type Outcome string

// Stage outcomes
const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeDegraded  Outcome = "degraded"
	OutcomeFailed    Outcome = "failed"
)

// StageResult is what one stage reports back to the pipeline.
type StageResult struct {
	Stage    string        `json:"stage"`
	Outcome  Outcome       `json:"outcome"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`

	Err error `json:"-"`
}

// Succeeded reports whether the stage completed, degraded or not.
func (r StageResult) Succeeded() bool {
	return r.Outcome != OutcomeFailed
}

func succeeded(format string, args ...any) StageResult {
	return StageResult{Outcome: OutcomeSucceeded, Detail: fmt.Sprintf(format, args...)}
}

func degraded(format string, args ...any) StageResult {
	return StageResult{Outcome: OutcomeDegraded, Detail: fmt.Sprintf(format, args...)}
}

func failed(err error) StageResult {
	return StageResult{Outcome: OutcomeFailed, Err: err}
}

// Stage is one step of a run.
type Stage struct {
	Name string
	// Kind is the taxonomy sentinel attached to failures that do not carry
	// a stage of their own.
	Kind error
	// Mutates marks stages that change external state. The soft deadline
	// is checked before each of them starts.
	Mutates bool
	Run     func(ctx context.Context) StageResult
}

// Pipeline runs stages in order and halts at the first failure.
type Pipeline struct {
	stages       []Stage
	softDeadline time.Duration
	monitor      *health.Monitor
	metrics      *metric.Metrics
	now          func() time.Time
	logger       *slog.Logger
}

// NewPipeline creates a pipeline over stages.
func NewPipeline(stages []Stage, softDeadline time.Duration, monitor *health.Monitor, metrics *metric.Metrics, logger *slog.Logger) *Pipeline {
	if monitor == nil {
		monitor = health.NewMonitor()
	}
	if metrics == nil {
		metrics = metric.NewMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		stages:       stages,
		softDeadline: softDeadline,
		monitor:      monitor,
		metrics:      metrics,
		now:          time.Now,
		logger:       logger,
	}
}

// Execute runs every stage. It returns the results of the stages that ran and
// the first failure, which is always a *errors.StageError.
func (p *Pipeline) Execute(ctx context.Context) ([]StageResult, error) {
	results := make([]StageResult, 0, len(p.stages))

	for _, s := range p.stages {
		start := p.now()

		var res StageResult
		if err := p.preflight(ctx, s); err != nil {
			res = failed(err)
		} else {
			res = s.Run(ctx)
		}
		res.Stage = s.Name
		res.Duration = p.now().Sub(start)

		if res.Err != nil {
			if _, ok := errors.StageOf(res.Err); !ok {
				res.Err = errors.NewStageError(s.Name, "", s.Kind, res.Err)
			}
			res.Outcome = OutcomeFailed
			res.Error = res.Err.Error()
			results = append(results, res)
			p.record(res)
			return results, res.Err
		}

		results = append(results, res)
		p.record(res)
	}

	return results, nil
}

// preflight refuses to start a stage when the run is cancelled, or when a
// mutating stage would start with less than the soft deadline left.
func (p *Pipeline) preflight(ctx context.Context, s Stage) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrDeadline, err), "pipeline", s.Name, "start stage")
	}
	if !s.Mutates {
		return nil
	}
	return CheckDeadline(ctx, p.softDeadline, p.now())
}

func (p *Pipeline) record(res StageResult) {
	switch res.Outcome {
	case OutcomeFailed:
		p.monitor.Update(res.Stage, health.FromError(res.Stage, res.Err).WithDuration(res.Duration))
		p.metrics.RecordStageFailure(res.Stage, errors.Classify(res.Err).String())
		p.logger.Error("Stage failed", "stage", res.Stage, "duration", res.Duration, "error", res.Err)
	case OutcomeDegraded:
		p.monitor.Update(res.Stage, health.NewDegraded(res.Stage, res.Detail).WithDuration(res.Duration))
		p.logger.Warn("Stage degraded", "stage", res.Stage, "duration", res.Duration, "detail", res.Detail)
	default:
		p.monitor.Update(res.Stage, health.NewHealthy(res.Stage, res.Detail).WithDuration(res.Duration))
		p.logger.Info("Stage completed", "stage", res.Stage, "duration", res.Duration, "detail", res.Detail)
	}
	p.metrics.RecordStage(res.Stage, res.Duration)
}

// CheckDeadline fails with errors.ErrDeadline when ctx has a deadline that
// leaves less than soft at now. A context without a deadline, or a zero
// soft margin, always passes.
func CheckDeadline(ctx context.Context, soft time.Duration, now time.Time) error {
	if soft <= 0 {
		return nil
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	if remaining := deadline.Sub(now); remaining < soft {
		return errors.WrapFatal(
			fmt.Errorf("%w: %s left, %s required", errors.ErrDeadline, remaining.Round(time.Millisecond), soft),
			"pipeline", "CheckDeadline", "check remaining time")
	}
	return nil
}
