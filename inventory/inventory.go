// Package inventory lists the live resources of a contact-center instance and
// the bot service it uses.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/connect"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2"

	"github.com/aws-samples/amazon-connect-cicd-workshop/config"
	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
)

// ConnectAPI is the read-only subset of the contact-center client.
type ConnectAPI interface {
	connect.ListContactFlowsAPIClient
	connect.ListQueuesAPIClient
	connect.ListPromptsAPIClient
}

// LexAPI is the read-only subset of the bot service client.
type LexAPI interface {
	lexmodelsv2.ListBotsAPIClient
	lexmodelsv2.ListBotAliasesAPIClient
}

// LiveFlow is a flow that exists on the instance.
type LiveFlow struct {
	ID   string
	Name string
	Arn  string
}

// ResourceEntry is a read-only resource mirrored into the mapping.
type ResourceEntry struct {
	Name string
	Arn  string
}

// Snapshot is the inventory gathered at the start of a run.
type Snapshot struct {
	Flows   []LiveFlow
	Bots    []ResourceEntry
	Queues  []ResourceEntry
	Prompts []ResourceEntry

	// QueuesSkipped is set when queue listing was rate limited and queues
	// were left out of this run's mapping.
	QueuesSkipped bool
}

// Inspector issues the listing calls. Every listing follows pagination to
// the last page.
type Inspector struct {
	connect ConnectAPI
	lex     LexAPI
	cfg     *config.Config
	logger  *slog.Logger
}

// NewInspector creates an inspector for the instance and app/env in cfg.
func NewInspector(cc ConnectAPI, lex LexAPI, cfg *config.Config, logger *slog.Logger) (*Inspector, error) {
	if cc == nil || lex == nil {
		return nil, errors.WrapInvalid(fmt.Errorf("api clients cannot be nil"), "inventory", "NewInspector", "validate clients")
	}
	if cfg == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "inventory", "NewInspector", "validate config")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{
		connect: cc,
		lex:     lex,
		cfg:     cfg,
		logger:  logger.With("component", "inventory"),
	}, nil
}

// Inspect lists flows, bot aliases, queues and prompts, in that order.
// A rate-limited queue listing is logged and recorded in the snapshot;
// every other listing error is returned.
func (i *Inspector) Inspect(ctx context.Context) (*Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)

	if snap.Flows, err = i.Flows(ctx); err != nil {
		return nil, err
	}
	if snap.Bots, err = i.BotAliases(ctx); err != nil {
		return nil, err
	}

	snap.Queues, err = i.Queues(ctx)
	switch {
	case errors.Is(err, errors.ErrRateLimitedQueueListing):
		i.logger.Warn("Queue listing rate limited, skipping queue mapping for this run", "error", err)
		snap.Queues = nil
		snap.QueuesSkipped = true
	case err != nil:
		return nil, err
	}

	if snap.Prompts, err = i.Prompts(ctx); err != nil {
		return nil, err
	}

	i.logger.Info("Live state inspected",
		"flows", len(snap.Flows),
		"bots", len(snap.Bots),
		"queues", len(snap.Queues),
		"prompts", len(snap.Prompts),
		"queues_skipped", snap.QueuesSkipped)
	return &snap, nil
}

// Flows lists every flow on the instance.
func (i *Inspector) Flows(ctx context.Context) ([]LiveFlow, error) {
	p := connect.NewListContactFlowsPaginator(i.connect, &connect.ListContactFlowsInput{
		InstanceId: aws.String(i.cfg.InstanceID),
	})

	flows := make([]LiveFlow, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, liveStateError(err, "Flows", "list contact flows")
		}
		for _, s := range page.ContactFlowSummaryList {
			flows = append(flows, LiveFlow{
				ID:   aws.ToString(s.Id),
				Name: aws.ToString(s.Name),
				Arn:  aws.ToString(s.Arn),
			})
		}
	}
	return flows, nil
}

// BotAliases returns one entry per bot whose name starts with the app name
// and which has an alias named after the environment. The entry carries the
// bot name and the alias ARN.
func (i *Inspector) BotAliases(ctx context.Context) ([]ResourceEntry, error) {
	p := lexmodelsv2.NewListBotsPaginator(i.lex, &lexmodelsv2.ListBotsInput{})

	entries := make([]ResourceEntry, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, liveStateError(err, "BotAliases", "list bots")
		}
		for _, bot := range page.BotSummaries {
			name := aws.ToString(bot.BotName)
			if !strings.HasPrefix(name, i.cfg.App) {
				continue
			}

			botID := aws.ToString(bot.BotId)
			aliasID, err := i.envAlias(ctx, botID)
			if err != nil {
				return nil, err
			}
			if aliasID == "" {
				i.logger.Warn("Bot has no alias for environment", "bot", name, "bot_id", botID, "env", i.cfg.Env)
				continue
			}
			entries = append(entries, ResourceEntry{Name: name, Arn: i.cfg.LexAliasArn(botID, aliasID)})
		}
	}
	return entries, nil
}

// envAlias returns the id of the bot alias named after the environment, or ""
// when there is none.
func (i *Inspector) envAlias(ctx context.Context, botID string) (string, error) {
	p := lexmodelsv2.NewListBotAliasesPaginator(i.lex, &lexmodelsv2.ListBotAliasesInput{
		BotId: aws.String(botID),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return "", liveStateError(err, "BotAliases", fmt.Sprintf("list aliases of bot %s", botID))
		}
		for _, alias := range page.BotAliasSummaries {
			if aws.ToString(alias.BotAliasName) == i.cfg.Env {
				return aws.ToString(alias.BotAliasId), nil
			}
		}
	}
	return "", nil
}

// Queues lists every named queue on the instance. A throttled listing returns
// an error matching errors.ErrRateLimitedQueueListing instead of
// errors.ErrLiveState.
func (i *Inspector) Queues(ctx context.Context) ([]ResourceEntry, error) {
	p := connect.NewListQueuesPaginator(i.connect, &connect.ListQueuesInput{
		InstanceId: aws.String(i.cfg.InstanceID),
	})

	entries := make([]ResourceEntry, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			if errors.IsRateLimited(err) {
				return nil, errors.WrapTransient(
					fmt.Errorf("%w: %w", errors.ErrRateLimitedQueueListing, err),
					"inventory", "Queues", "list queues")
			}
			return nil, liveStateError(err, "Queues", "list queues")
		}
		for _, q := range page.QueueSummaryList {
			if q.Name == nil {
				continue
			}
			entries = append(entries, ResourceEntry{Name: aws.ToString(q.Name), Arn: aws.ToString(q.Arn)})
		}
	}
	return entries, nil
}

// Prompts lists every prompt on the instance.
func (i *Inspector) Prompts(ctx context.Context) ([]ResourceEntry, error) {
	p := connect.NewListPromptsPaginator(i.connect, &connect.ListPromptsInput{
		InstanceId: aws.String(i.cfg.InstanceID),
	})

	entries := make([]ResourceEntry, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, liveStateError(err, "Prompts", "list prompts")
		}
		for _, pr := range page.PromptSummaryList {
			entries = append(entries, ResourceEntry{Name: aws.ToString(pr.Name), Arn: aws.ToString(pr.Arn)})
		}
	}
	return entries, nil
}

// AppFlows returns the flows whose name starts with prefix.
func AppFlows(flows []LiveFlow, prefix string) []LiveFlow {
	out := make([]LiveFlow, 0, len(flows))
	for _, f := range flows {
		if strings.HasPrefix(f.Name, prefix) {
			out = append(out, f)
		}
	}
	return out
}

func liveStateError(err error, method, action string) error {
	wrapped := fmt.Errorf("%w: %w", errors.ErrLiveState, err)
	if errors.IsTransient(err) {
		return errors.WrapTransient(wrapped, "inventory", method, action)
	}
	return errors.WrapFatal(wrapped, "inventory", method, action)
}
