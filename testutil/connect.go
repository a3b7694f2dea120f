package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/connect"
	connecttypes "github.com/aws/aws-sdk-go-v2/service/connect/types"
)

// FakeConnect is an in-memory contact-center instance.
//
// Flows created through CreateContactFlow are appended to Flows. With
// HideCreated set they are kept out of later listings, modelling a listing
// that lags behind creation.
type FakeConnect struct {
	mu sync.Mutex

	Log    *CallLog
	Faults Faults

	Flows   []connecttypes.ContactFlowSummary
	Queues  []connecttypes.QueueSummary
	Prompts []connecttypes.PromptSummary

	PageSize    int
	HideCreated bool

	// Content and Descriptions hold the last value written per flow id.
	Content      map[string]string
	Descriptions map[string]string

	hidden map[string]bool
	nextID int
}

// NewFakeConnect creates a fake instance holding flows with the given names.
func NewFakeConnect(log *CallLog, flowNames ...string) *FakeConnect {
	f := &FakeConnect{
		Log:          log,
		Content:      make(map[string]string),
		Descriptions: make(map[string]string),
		hidden:       make(map[string]bool),
	}
	for _, name := range flowNames {
		f.addFlow(name, connecttypes.ContactFlowTypeContactFlow)
	}
	return f
}

// FlowArn returns the ARN the fake assigns to a flow id.
func FlowArn(id string) string {
	return "arn:aws:connect:us-east-1:123456789012:instance/test-instance/contact-flow/" + id
}

// AddQueue adds a queue to the fake instance.
func (f *FakeConnect) AddQueue(name, arn string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n *string
	if name != "" {
		n = aws.String(name)
	}
	f.Queues = append(f.Queues, connecttypes.QueueSummary{
		Id:        aws.String(fmt.Sprintf("queue-%d", len(f.Queues)+1)),
		Name:      n,
		Arn:       aws.String(arn),
		QueueType: connecttypes.QueueTypeStandard,
	})
}

// AddPrompt adds a prompt to the fake instance.
func (f *FakeConnect) AddPrompt(name, arn string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, connecttypes.PromptSummary{
		Id:   aws.String(fmt.Sprintf("prompt-%d", len(f.Prompts)+1)),
		Name: aws.String(name),
		Arn:  aws.String(arn),
	})
}

// FlowNames returns the names of every flow, including hidden ones.
func (f *FakeConnect) FlowNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.Flows))
	for _, s := range f.Flows {
		names = append(names, aws.ToString(s.Name))
	}
	return names
}

// FlowID returns the id of the flow named name.
func (f *FakeConnect) FlowID(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.Flows {
		if aws.ToString(s.Name) == name {
			return aws.ToString(s.Id), true
		}
	}
	return "", false
}

func (f *FakeConnect) addFlow(name string, flowType connecttypes.ContactFlowType) connecttypes.ContactFlowSummary {
	f.nextID++
	id := fmt.Sprintf("flow-%d", f.nextID)
	summary := connecttypes.ContactFlowSummary{
		Id:              aws.String(id),
		Name:            aws.String(name),
		Arn:             aws.String(FlowArn(id)),
		ContactFlowType: flowType,
	}
	f.Flows = append(f.Flows, summary)
	return summary
}

func (f *FakeConnect) indexOf(id string) int {
	for i, s := range f.Flows {
		if aws.ToString(s.Id) == id {
			return i
		}
	}
	return -1
}

// ListContactFlows implements connect.ListContactFlowsAPIClient.
func (f *FakeConnect) ListContactFlows(_ context.Context, in *connect.ListContactFlowsInput, _ ...func(*connect.Options)) (*connect.ListContactFlowsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Log.Record("connect", "ListContactFlows", aws.ToString(in.InstanceId))
	if err := f.Faults.lookup("ListContactFlows", ""); err != nil {
		return nil, err
	}

	visible := make([]connecttypes.ContactFlowSummary, 0, len(f.Flows))
	for _, s := range f.Flows {
		if !f.hidden[aws.ToString(s.Id)] {
			visible = append(visible, s)
		}
	}
	page, next := paginate(visible, in.NextToken, f.PageSize)
	return &connect.ListContactFlowsOutput{ContactFlowSummaryList: page, NextToken: next}, nil
}

// CreateContactFlow creates a flow and returns its generated id.
func (f *FakeConnect) CreateContactFlow(_ context.Context, in *connect.CreateContactFlowInput, _ ...func(*connect.Options)) (*connect.CreateContactFlowOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.Name)
	f.Log.Record("connect", "CreateContactFlow", name)
	if err := f.Faults.lookup("CreateContactFlow", name); err != nil {
		return nil, err
	}
	for _, s := range f.Flows {
		if aws.ToString(s.Name) == name {
			return nil, APIError("DuplicateResourceException", "flow already exists: "+name)
		}
	}

	summary := f.addFlow(name, in.Type)
	id := aws.ToString(summary.Id)
	f.Content[id] = aws.ToString(in.Content)
	if f.HideCreated {
		f.hidden[id] = true
	}
	return &connect.CreateContactFlowOutput{ContactFlowId: summary.Id, ContactFlowArn: summary.Arn}, nil
}

// UpdateContactFlowContent overwrites a flow's content.
func (f *FakeConnect) UpdateContactFlowContent(_ context.Context, in *connect.UpdateContactFlowContentInput, _ ...func(*connect.Options)) (*connect.UpdateContactFlowContentOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := aws.ToString(in.ContactFlowId)
	f.Log.Record("connect", "UpdateContactFlowContent", id)
	if err := f.Faults.lookup("UpdateContactFlowContent", id); err != nil {
		return nil, err
	}
	if f.indexOf(id) < 0 {
		return nil, APIError("ResourceNotFoundException", "no flow "+id)
	}

	f.Content[id] = aws.ToString(in.Content)
	return &connect.UpdateContactFlowContentOutput{}, nil
}

// UpdateContactFlowName renames a flow and sets its description.
func (f *FakeConnect) UpdateContactFlowName(_ context.Context, in *connect.UpdateContactFlowNameInput, _ ...func(*connect.Options)) (*connect.UpdateContactFlowNameOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := aws.ToString(in.ContactFlowId)
	f.Log.Record("connect", "UpdateContactFlowName", id)
	if err := f.Faults.lookup("UpdateContactFlowName", id); err != nil {
		return nil, err
	}
	i := f.indexOf(id)
	if i < 0 {
		return nil, APIError("ResourceNotFoundException", "no flow "+id)
	}

	f.Flows[i].Name = in.Name
	f.Descriptions[id] = aws.ToString(in.Description)
	return &connect.UpdateContactFlowNameOutput{}, nil
}

// ListQueues implements connect.ListQueuesAPIClient.
func (f *FakeConnect) ListQueues(_ context.Context, in *connect.ListQueuesInput, _ ...func(*connect.Options)) (*connect.ListQueuesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Log.Record("connect", "ListQueues", aws.ToString(in.InstanceId))
	if err := f.Faults.lookup("ListQueues", ""); err != nil {
		return nil, err
	}
	page, next := paginate(f.Queues, in.NextToken, f.PageSize)
	return &connect.ListQueuesOutput{QueueSummaryList: page, NextToken: next}, nil
}

// ListPrompts implements connect.ListPromptsAPIClient.
func (f *FakeConnect) ListPrompts(_ context.Context, in *connect.ListPromptsInput, _ ...func(*connect.Options)) (*connect.ListPromptsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Log.Record("connect", "ListPrompts", aws.ToString(in.InstanceId))
	if err := f.Faults.lookup("ListPrompts", ""); err != nil {
		return nil, err
	}
	page, next := paginate(f.Prompts, in.NextToken, f.PageSize)
	return &connect.ListPromptsOutput{PromptSummaryList: page, NextToken: next}, nil
}
