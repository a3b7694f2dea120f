package flowstore

import (
	"testing"

	connecttypes "github.com/aws/aws-sdk-go-v2/service/connect/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
)

func TestFlowDefinition_Validate(t *testing.T) {
	tests := []struct {
		name      string
		def       FlowDefinition
		wantError bool
	}{
		{
			name: "contact flow",
			def:  FlowDefinition{Name: "app-Main", Type: connecttypes.ContactFlowTypeContactFlow, Content: `{"Version":"2019-10-30"}`},
		},
		{
			name: "queue transfer flow",
			def:  FlowDefinition{Name: "app-Transfer", Type: connecttypes.ContactFlowTypeQueueTransfer, Content: `{}`},
		},
		{
			name:      "empty name",
			def:       FlowDefinition{Type: connecttypes.ContactFlowTypeContactFlow, Content: `{}`},
			wantError: true,
		},
		{
			name:      "unknown type",
			def:       FlowDefinition{Name: "app-Main", Type: "CONTACT_MODULE_V9", Content: `{}`},
			wantError: true,
		},
		{
			name:      "content not JSON",
			def:       FlowDefinition{Name: "app-Main", Type: connecttypes.ContactFlowTypeContactFlow, Content: `{"Actions":[`},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestCheckDuplicates(t *testing.T) {
	unique := []FlowDefinition{
		{Name: "app-A", Key: "callflows/a.json"},
		{Name: "app-B", Key: "callflows/b.json"},
	}
	assert.NoError(t, CheckDuplicates(unique))
	assert.NoError(t, CheckDuplicates(nil))

	dup := append(unique, FlowDefinition{Name: "app-A", Key: "callflows/a-copy.json"})
	err := CheckDuplicates(dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDuplicateFlowName)
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "callflows/a.json")
	assert.Contains(t, err.Error(), "callflows/a-copy.json")
}

func TestNames(t *testing.T) {
	names := Names([]FlowDefinition{{Name: "app-A"}, {Name: "app-B"}})
	assert.Equal(t, map[string]bool{"app-A": true, "app-B": true}, names)
}
