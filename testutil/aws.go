package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2"
	lextypes "github.com/aws/aws-sdk-go-v2/service/lexmodelsv2/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// FakeLex is an in-memory conversational-bot service.
type FakeLex struct {
	mu sync.Mutex

	Log    *CallLog
	Faults Faults

	Bots     []lextypes.BotSummary
	Aliases  map[string][]lextypes.BotAliasSummary
	PageSize int
}

// NewFakeLex creates an empty fake bot service.
func NewFakeLex(log *CallLog) *FakeLex {
	return &FakeLex{Log: log, Aliases: make(map[string][]lextypes.BotAliasSummary)}
}

// AddBot adds a bot with the given id and name, and one alias per name in
// aliases. Alias ids are "<botID>-<alias>".
func (f *FakeLex) AddBot(id, name string, aliases ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Bots = append(f.Bots, lextypes.BotSummary{
		BotId:     aws.String(id),
		BotName:   aws.String(name),
		BotStatus: lextypes.BotStatusAvailable,
	})
	for _, alias := range aliases {
		f.Aliases[id] = append(f.Aliases[id], lextypes.BotAliasSummary{
			BotAliasId:   aws.String(fmt.Sprintf("%s-%s", id, alias)),
			BotAliasName: aws.String(alias),
		})
	}
}

// ListBots implements lexmodelsv2.ListBotsAPIClient.
func (f *FakeLex) ListBots(_ context.Context, in *lexmodelsv2.ListBotsInput, _ ...func(*lexmodelsv2.Options)) (*lexmodelsv2.ListBotsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Log.Record("lex", "ListBots", "")
	if err := f.Faults.lookup("ListBots", ""); err != nil {
		return nil, err
	}
	page, next := paginate(f.Bots, in.NextToken, f.PageSize)
	return &lexmodelsv2.ListBotsOutput{BotSummaries: page, NextToken: next}, nil
}

// ListBotAliases implements lexmodelsv2.ListBotAliasesAPIClient.
func (f *FakeLex) ListBotAliases(_ context.Context, in *lexmodelsv2.ListBotAliasesInput, _ ...func(*lexmodelsv2.Options)) (*lexmodelsv2.ListBotAliasesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	botID := aws.ToString(in.BotId)
	f.Log.Record("lex", "ListBotAliases", botID)
	if err := f.Faults.lookup("ListBotAliases", botID); err != nil {
		return nil, err
	}
	page, next := paginate(f.Aliases[botID], in.NextToken, f.PageSize)
	return &lexmodelsv2.ListBotAliasesOutput{BotId: in.BotId, BotAliasSummaries: page, NextToken: next}, nil
}

// FakeSSM is an in-memory parameter store.
type FakeSSM struct {
	mu sync.Mutex

	Log    *CallLog
	Faults Faults

	Params map[string]string
	Puts   []ssm.PutParameterInput
}

// NewFakeSSM creates a parameter store holding params.
func NewFakeSSM(log *CallLog, params map[string]string) *FakeSSM {
	p := make(map[string]string, len(params))
	for k, v := range params {
		p[k] = v
	}
	return &FakeSSM{Log: log, Params: p}
}

// PutParameter stores a parameter. Existing names require Overwrite.
func (f *FakeSSM) PutParameter(_ context.Context, in *ssm.PutParameterInput, _ ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.Name)
	f.Log.Record("ssm", "PutParameter", name)
	if err := f.Faults.lookup("PutParameter", name); err != nil {
		return nil, err
	}
	if _, exists := f.Params[name]; exists && !aws.ToBool(in.Overwrite) {
		return nil, &ssmtypes.ParameterAlreadyExists{Message: aws.String(name)}
	}

	f.Params[name] = aws.ToString(in.Value)
	f.Puts = append(f.Puts, *in)
	return &ssm.PutParameterOutput{Version: 1}, nil
}

// GetParameter returns a stored parameter.
func (f *FakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.Name)
	f.Log.Record("ssm", "GetParameter", name)
	if err := f.Faults.lookup("GetParameter", name); err != nil {
		return nil, err
	}
	value, ok := f.Params[name]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{Message: aws.String(name)}
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{
		Name:  aws.String(name),
		Value: aws.String(value),
		Type:  ssmtypes.ParameterTypeString,
	}}, nil
}

// FakeLambda records function code updates.
type FakeLambda struct {
	mu sync.Mutex

	Log    *CallLog
	Faults Faults

	Updates []lambda.UpdateFunctionCodeInput
}

// NewFakeLambda creates a fake function deployment service.
func NewFakeLambda(log *CallLog) *FakeLambda {
	return &FakeLambda{Log: log}
}

// UpdateFunctionCode records the update.
func (f *FakeLambda) UpdateFunctionCode(_ context.Context, in *lambda.UpdateFunctionCodeInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.FunctionName)
	f.Log.Record("lambda", "UpdateFunctionCode", name)
	if err := f.Faults.lookup("UpdateFunctionCode", name); err != nil {
		return nil, err
	}

	f.Updates = append(f.Updates, *in)
	return &lambda.UpdateFunctionCodeOutput{
		FunctionName: in.FunctionName,
		FunctionArn:  aws.String("arn:aws:lambda:us-east-1:123456789012:function:" + name),
		Version:      aws.String("$LATEST"),
	}, nil
}
