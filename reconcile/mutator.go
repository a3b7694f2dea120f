package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/connect"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
	"github.com/aws-samples/amazon-connect-cicd-workshop/flowstore"
	"github.com/aws-samples/amazon-connect-cicd-workshop/inventory"
	"github.com/aws-samples/amazon-connect-cicd-workshop/metric"
)

// FlowAPI is the mutating subset of the contact-center client.
type FlowAPI interface {
	CreateContactFlow(ctx context.Context, params *connect.CreateContactFlowInput, optFns ...func(*connect.Options)) (*connect.CreateContactFlowOutput, error)
	UpdateContactFlowContent(ctx context.Context, params *connect.UpdateContactFlowContentInput, optFns ...func(*connect.Options)) (*connect.UpdateContactFlowContentOutput, error)
	UpdateContactFlowName(ctx context.Context, params *connect.UpdateContactFlowNameInput, optFns ...func(*connect.Options)) (*connect.UpdateContactFlowNameOutput, error)
}

// Mutator applies flow creates, content updates and orphan renames. Each
// phase is sequential and stops at the first failed call; calls already made
// are not undone.
type Mutator struct {
	api         FlowAPI
	instanceID  string
	marker      string
	description string
	metrics     *metric.Metrics
	logger      *slog.Logger
}

// NewMutator creates a mutator for one instance. Orphans are renamed to
// marker+name with description.
func NewMutator(api FlowAPI, instanceID, marker, description string, metrics *metric.Metrics, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = metric.NewMetrics()
	}
	return &Mutator{
		api:         api,
		instanceID:  instanceID,
		marker:      marker,
		description: description,
		metrics:     metrics,
		logger:      logger.With("component", "mutator"),
	}
}

// OrphanName returns the name an orphaned flow is renamed to.
func (m *Mutator) OrphanName(name string) string {
	return m.marker + name
}

// Create creates every definition. It returns how many were created.
func (m *Mutator) Create(ctx context.Context, defs []flowstore.FlowDefinition) (int, error) {
	for i, d := range defs {
		_, err := m.api.CreateContactFlow(ctx, &connect.CreateContactFlowInput{
			InstanceId: aws.String(m.instanceID),
			Name:       aws.String(d.Name),
			Type:       d.Type,
			Content:    aws.String(d.Content),
		})
		m.metrics.RecordMutation(StageCreate, err)
		if err != nil {
			return i, m.fail(StageCreate, d.Name, "create flow", err)
		}
		m.logger.Info("Flow created", "phase", StageCreate, "flow", d.Name, "type", d.Type)
	}
	return len(defs), nil
}

// Update overwrites the content of every paired live flow. It returns how
// many were updated.
func (m *Mutator) Update(ctx context.Context, pairs []UpdatePair) (int, error) {
	for i, p := range pairs {
		_, err := m.api.UpdateContactFlowContent(ctx, &connect.UpdateContactFlowContentInput{
			InstanceId:    aws.String(m.instanceID),
			ContactFlowId: aws.String(p.Live.ID),
			Content:       aws.String(p.Desired.Content),
		})
		m.metrics.RecordMutation(StageUpdate, err)
		if err != nil {
			return i, m.fail(StageUpdate, p.Live.Name, "update flow content", err)
		}
		m.logger.Info("Flow content updated", "phase", StageUpdate, "flow", p.Live.Name, "flow_id", p.Live.ID)
	}
	return len(pairs), nil
}

// Rename renames every orphan to its marked name. Flows are never deleted.
// It returns how many were renamed.
func (m *Mutator) Rename(ctx context.Context, orphans []inventory.LiveFlow) (int, error) {
	for i, o := range orphans {
		newName := m.OrphanName(o.Name)
		_, err := m.api.UpdateContactFlowName(ctx, &connect.UpdateContactFlowNameInput{
			InstanceId:    aws.String(m.instanceID),
			ContactFlowId: aws.String(o.ID),
			Name:          aws.String(newName),
			Description:   aws.String(m.description),
		})
		m.metrics.RecordMutation(StageRename, err)
		if err != nil {
			return i, m.fail(StageRename, o.Name, "rename orphaned flow", err)
		}
		m.logger.Info("Orphaned flow renamed", "phase", StageRename, "flow", o.Name, "new_name", newName)
	}
	return len(orphans), nil
}

func (m *Mutator) fail(phase, flow, action string, err error) error {
	m.logger.Error("Flow mutation failed", "phase", phase, "flow", flow, "error", err)

	var classified error
	if errors.IsTransient(err) {
		classified = errors.WrapTransient(err, "mutator", phase, fmt.Sprintf("%s %s", action, flow))
	} else {
		classified = errors.WrapFatal(err, "mutator", phase, fmt.Sprintf("%s %s", action, flow))
	}
	return errors.NewStageError(phase, flow, errors.ErrFlowMutation, classified)
}
