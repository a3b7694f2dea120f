package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aws-samples/amazon-connect-cicd-workshop/config"
	"github.com/aws-samples/amazon-connect-cicd-workshop/deploy"
	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
	"github.com/aws-samples/amazon-connect-cicd-workshop/flowstore"
	"github.com/aws-samples/amazon-connect-cicd-workshop/health"
	"github.com/aws-samples/amazon-connect-cicd-workshop/inventory"
	"github.com/aws-samples/amazon-connect-cicd-workshop/mapping"
	"github.com/aws-samples/amazon-connect-cicd-workshop/metric"
	"github.com/aws-samples/amazon-connect-cicd-workshop/params"
	"github.com/aws-samples/amazon-connect-cicd-workshop/storage"
)

// Resource kinds mirrored into the mapping and the parameter store.
const (
	KindBot    = "bot"
	KindQueue  = "queue"
	KindPrompt = "prompt"
	KindFlow   = "flow"
)

// pushTimeout bounds the metrics push made after a run finishes.
const pushTimeout = 5 * time.Second

// ConnectAPI is the contact-center client surface the engine needs.
type ConnectAPI interface {
	inventory.ConnectAPI
	FlowAPI
}

// Deps are the external clients a run talks to.
type Deps struct {
	Store     storage.Store
	Connect   ConnectAPI
	Lex       inventory.LexAPI
	Params    params.API
	Functions deploy.FunctionAPI
}

// Engine performs reconciliation runs. Runs are not safe to execute
// concurrently against the same instance.
type Engine struct {
	cfg      *config.Config
	deps     Deps
	registry *metric.MetricsRegistry
	pusher   *metric.Pusher
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records run metrics in registry.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(e *Engine) {
		if registry != nil {
			e.registry = registry
		}
	}
}

// WithPusher pushes the registry after every run.
func WithPusher(pusher *metric.Pusher) Option {
	return func(e *Engine) {
		e.pusher = pusher
	}
}

// WithClock replaces the time source used for deadlines and durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine validates cfg and deps and creates an engine.
func NewEngine(cfg *config.Config, deps Deps, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "reconcile", "NewEngine", "validate config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "reconcile", "NewEngine", "validate config")
	}
	if deps.Store == nil || deps.Connect == nil || deps.Lex == nil || deps.Params == nil || deps.Functions == nil {
		return nil, errors.WrapInvalid(fmt.Errorf("all clients are required"), "reconcile", "NewEngine", "validate dependencies")
	}

	e := &Engine{
		cfg:    cfg,
		deps:   deps,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = metric.NewMetricsRegistry()
	}
	e.logger = e.logger.With("component", "reconcile")
	return e, nil
}

// Registry returns the registry run metrics are recorded in.
func (e *Engine) Registry() *metric.MetricsRegistry {
	return e.registry
}

// run holds the components and intermediate state of one run.
type run struct {
	id      string
	cfg     *config.Config
	metrics *metric.Metrics
	logger  *slog.Logger

	publisher *params.Publisher
	fetcher   *flowstore.Fetcher
	inspector *inventory.Inspector
	mutator   *Mutator
	builder   *mapping.Builder
	deployer  *deploy.Deployer

	functionArn  string
	functionName string
	desired      []flowstore.FlowDefinition
	snapshot     *inventory.Snapshot
	plan         Plan
	manifest     *mapping.Manifest
	artifact     *mapping.Artifact
	location     deploy.Location
	deployed     *deploy.Result

	created, updated, renamed, published int
}

// Run performs one reconciliation. The returned report is never nil; err is
// the first stage failure, and no stage runs after it.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	started := e.now()
	r, err := e.newRun()
	if err != nil {
		return &Report{StartedAt: started, FinishedAt: e.now(), Error: err.Error()}, err
	}

	r.logger.Info("Reconciliation started",
		"instance_id", e.cfg.InstanceID, "app", e.cfg.App, "env", e.cfg.Env)

	monitor := health.NewMonitor()
	pipeline := NewPipeline(r.stages(), e.cfg.SoftDeadline, monitor, r.metrics, r.logger)
	pipeline.now = e.now
	results, runErr := pipeline.Execute(ctx)

	finished := e.now()
	r.metrics.RecordRun(runErr == nil, finished)

	report := r.report(started, finished, results, monitor.AggregateHealth("reconcile"))
	if runErr != nil {
		report.Error = runErr.Error()
		r.logger.Error("Reconciliation failed", "error", runErr, "duration", finished.Sub(started))
	} else {
		r.logger.Info("Reconciliation completed",
			"created", r.created, "updated", r.updated, "renamed", r.renamed,
			"parameters", r.published, "mapping_entries", report.MappingEntries,
			"duration", finished.Sub(started))
	}

	e.push(ctx, r)
	return report, runErr
}

func (e *Engine) newRun() (*run, error) {
	id := uuid.NewString()
	logger := e.logger.With("run_id", id)
	metrics := e.registry.CoreMetrics()

	publisher, err := params.NewPublisher(e.deps.Params, e.cfg, logger)
	if err != nil {
		return nil, err
	}
	fetcher, err := flowstore.NewFetcher(e.deps.Store, e.cfg.FlowPrefix, e.cfg.Placeholder, logger)
	if err != nil {
		return nil, err
	}
	inspector, err := inventory.NewInspector(e.deps.Connect, e.deps.Lex, e.cfg, logger)
	if err != nil {
		return nil, err
	}
	deployer, err := deploy.NewDeployer(e.deps.Store, e.deps.Functions, e.cfg.ArtifactKey, logger)
	if err != nil {
		return nil, err
	}

	return &run{
		id:        id,
		cfg:       e.cfg,
		metrics:   metrics,
		logger:    logger,
		publisher: publisher,
		fetcher:   fetcher,
		inspector: inspector,
		mutator: NewMutator(e.deps.Connect, e.cfg.InstanceID, e.cfg.OrphanMarker,
			e.cfg.OrphanDescription, metrics, logger),
		builder:  mapping.NewBuilder(logger),
		deployer: deployer,
		manifest: mapping.NewManifest(),
	}, nil
}

func (e *Engine) push(ctx context.Context, r *run) {
	if !e.pusher.Enabled() {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := e.pusher.Push(pushCtx); err != nil {
		r.logger.Warn("Metrics push failed", "error", err)
	}
}

func (r *run) stages() []Stage {
	return []Stage{
		{Name: StageResolve, Kind: errors.ErrParameter, Run: r.resolve},
		{Name: StageFetch, Kind: errors.ErrStateFetch, Run: r.fetch},
		{Name: StageInspect, Kind: errors.ErrLiveState, Run: r.inspect},
		{Name: StageCreate, Kind: errors.ErrFlowMutation, Mutates: true, Run: r.create},
		{Name: StageRelist, Kind: errors.ErrLiveState, Run: r.relist},
		{Name: StageUpdate, Kind: errors.ErrFlowMutation, Mutates: true, Run: r.update},
		{Name: StageRename, Kind: errors.ErrFlowMutation, Mutates: true, Run: r.rename},
		{Name: StagePublish, Kind: errors.ErrParameter, Mutates: true, Run: r.publish},
		{Name: StageBuild, Kind: errors.ErrArtifactBuild, Run: r.build},
		{Name: StageUpload, Kind: errors.ErrUpload, Mutates: true, Run: r.upload},
		{Name: StageDeploy, Kind: errors.ErrDeploy, Mutates: true, Run: r.deploy},
	}
}

func (r *run) resolve(ctx context.Context) StageResult {
	arn, err := r.publisher.Get(ctx, r.cfg.MappingArnParam)
	if err != nil {
		return failed(err)
	}
	name, err := r.publisher.Get(ctx, r.cfg.MappingNameParam)
	if err != nil {
		return failed(err)
	}
	r.functionArn, r.functionName = arn, name
	return succeeded("mapping function %s", name)
}

func (r *run) fetch(ctx context.Context) StageResult {
	desired, err := r.fetcher.Fetch(ctx, r.functionArn)
	if err != nil {
		return failed(err)
	}
	r.desired = desired
	if len(desired) == 0 {
		return degraded("no desired flows under %s", r.cfg.FlowPrefix)
	}
	return succeeded("%d desired flows", len(desired))
}

func (r *run) inspect(ctx context.Context) StageResult {
	snap, err := r.inspector.Inspect(ctx)
	if err != nil {
		return failed(err)
	}
	r.snapshot = snap
	if snap.QueuesSkipped {
		r.metrics.RecordQueueSkip()
		return degraded("queue listing rate limited, queues left out of the mapping")
	}
	return succeeded("%d flows, %d bots, %d queues, %d prompts",
		len(snap.Flows), len(snap.Bots), len(snap.Queues), len(snap.Prompts))
}

func (r *run) create(ctx context.Context) StageResult {
	r.plan.Creates = Creates(r.desired, r.snapshot.Flows)
	n, err := r.mutator.Create(ctx, r.plan.Creates)
	r.created = n
	if err != nil {
		return failed(err)
	}
	return succeeded("%d flows created", n)
}

func (r *run) relist(ctx context.Context) StageResult {
	live, err := r.inspector.Flows(ctx)
	if err != nil {
		return failed(err)
	}
	r.plan.Updates = Updates(r.desired, live)
	r.plan.Orphans = Orphans(r.desired, live, r.cfg.App)

	if missing := len(r.desired) - len(r.plan.Updates); missing > 0 {
		r.logger.Warn("Desired flows missing from listing after create",
			"missing", missing, "created", r.created)
	}
	return succeeded("%d flows listed, %d to update, %d orphaned",
		len(live), len(r.plan.Updates), len(r.plan.Orphans))
}

func (r *run) update(ctx context.Context) StageResult {
	n, err := r.mutator.Update(ctx, r.plan.Updates)
	r.updated = n
	if err != nil {
		return failed(err)
	}
	return succeeded("%d flows updated", n)
}

func (r *run) rename(ctx context.Context) StageResult {
	n, err := r.mutator.Rename(ctx, r.plan.Orphans)
	r.renamed = n
	if err != nil {
		return failed(err)
	}
	return succeeded("%d orphaned flows renamed", n)
}

// publish adds every discovered resource to the manifest and writes its
// parameter. Each entry is validated into the manifest before its parameter
// is written.
func (r *run) publish(ctx context.Context) StageResult {
	flows := make([]inventory.ResourceEntry, 0, len(r.plan.Updates))
	for _, p := range r.plan.Updates {
		flows = append(flows, inventory.ResourceEntry{Name: p.Live.Name, Arn: p.Live.Arn})
	}

	groups := []struct {
		kind    string
		entries []inventory.ResourceEntry
	}{
		{KindBot, r.snapshot.Bots},
		{KindQueue, r.snapshot.Queues},
		{KindPrompt, r.snapshot.Prompts},
		{KindFlow, flows},
	}

	for _, g := range groups {
		for _, entry := range g.entries {
			if err := r.manifest.Add(entry.Name, entry.Arn); err != nil {
				return failed(errors.NewStageError(StagePublish, entry.Name, errors.ErrArtifactBuild, err))
			}
			if err := r.publisher.Publish(ctx, entry.Name, entry.Arn); err != nil {
				return failed(errors.NewStageError(StagePublish, entry.Name, errors.ErrParameter, err))
			}
			r.metrics.RecordParameter(g.kind)
			r.published++
		}
	}
	return succeeded("%d parameters published", r.published)
}

func (r *run) build(_ context.Context) StageResult {
	artifact, err := r.builder.Build(r.manifest)
	if err != nil {
		return failed(err)
	}
	r.artifact = artifact
	r.metrics.RecordArtifact(artifact.Entries, len(artifact.Archive))
	return succeeded("%d entries, sha256 %s", artifact.Entries, artifact.SHA256)
}

func (r *run) upload(ctx context.Context) StageResult {
	loc, err := r.deployer.Upload(ctx, r.artifact)
	if err != nil {
		return failed(err)
	}
	r.location = loc
	return succeeded("s3://%s/%s", loc.Bucket, loc.Key)
}

func (r *run) deploy(ctx context.Context) StageResult {
	res, err := r.deployer.Activate(ctx, r.functionName, r.location)
	if err != nil {
		return failed(err)
	}
	r.deployed = res
	return succeeded("%s updated", res.FunctionName)
}
