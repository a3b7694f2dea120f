package reconcile

import (
	"testing"

	connecttypes "github.com/aws/aws-sdk-go-v2/service/connect/types"
	"github.com/stretchr/testify/assert"

	"github.com/aws-samples/amazon-connect-cicd-workshop/flowstore"
	"github.com/aws-samples/amazon-connect-cicd-workshop/inventory"
)

func defs(names ...string) []flowstore.FlowDefinition {
	out := make([]flowstore.FlowDefinition, 0, len(names))
	for _, n := range names {
		out = append(out, flowstore.FlowDefinition{
			Name:    n,
			Type:    connecttypes.ContactFlowTypeContactFlow,
			Content: `{"name":"` + n + `"}`,
		})
	}
	return out
}

func live(names ...string) []inventory.LiveFlow {
	out := make([]inventory.LiveFlow, 0, len(names))
	for i, n := range names {
		id := string(rune('a' + i))
		out = append(out, inventory.LiveFlow{ID: id, Name: n, Arn: "arn:" + id})
	}
	return out
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, name(it))
	}
	return out
}

func defName(d flowstore.FlowDefinition) string { return d.Name }
func liveName(l inventory.LiveFlow) string { return l.Name }
func pairName(p UpdatePair) string { return p.Live.Name }

func TestCreates(t *testing.T) {
	tests := []struct {
		name    string
		desired []flowstore.FlowDefinition
		live    []inventory.LiveFlow
		want    []string
	}{
		{"all new", defs("appA", "appB"), nil, []string{"appA", "appB"}},
		{"some exist", defs("appA", "appB"), live("appB", "appC"), []string{"appA"}},
		{"none new", defs("appB"), live("appB"), []string{}},
		{"empty desired", nil, live("appB"), []string{}},
		{"orphan name does not count", defs("appC"), live("z_appC"), []string{"appC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Creates(tt.desired, tt.live), defName))
		})
	}
}

func TestUpdates(t *testing.T) {
	tests := []struct {
		name    string
		desired []flowstore.FlowDefinition
		live    []inventory.LiveFlow
		want    []string
	}{
		{"live order", defs("appA", "appB"), live("appB", "Default", "appA"), []string{"appB", "appA"}},
		{"created flow missing from listing", defs("appA", "appB"), live("appB"), []string{"appB"}},
		{"no overlap", defs("appA"), live("appB"), []string{}},
		{"non-app desired flow", defs("Shared"), live("Shared"), []string{"Shared"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Updates(tt.desired, tt.live), pairName))
		})
	}
}

func TestUpdates_PairsDefinition(t *testing.T) {
	pairs := Updates(defs("appA"), live("appA"))
	assert.Equal(t, []UpdatePair{{
		Live:    inventory.LiveFlow{ID: "a", Name: "appA", Arn: "arn:a"},
		Desired: defs("appA")[0],
	}}, pairs)
}

func TestOrphans(t *testing.T) {
	tests := []struct {
		name    string
		desired []flowstore.FlowDefinition
		live    []inventory.LiveFlow
		want    []string
	}{
		{"app flow not desired", defs("appB"), live("appB", "appC"), []string{"appC"}},
		{"non-app flows ignored", defs("appB"), live("appB", "Default", "Sample"), []string{}},
		{"renamed orphans ignored", defs("appB"), live("appB", "z_appC"), []string{}},
		{"empty desired orphans every app flow", nil, live("appB", "appC", "Default"), []string{"appB", "appC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Orphans(tt.desired, tt.live, "app"), liveName))
		})
	}
}

func TestPartitionIsDisjoint(t *testing.T) {
	desired := defs("appA", "appB", "Shared")
	before := live("appB", "appC", "Shared", "Default")
	after := append(before, inventory.LiveFlow{ID: "x", Name: "appA", Arn: "arn:x"})

	creates := names(Creates(desired, before), defName)
	updates := names(Updates(desired, after), pairName)
	orphans := names(Orphans(desired, after, "app"), liveName)

	assert.Equal(t, []string{"appA"}, creates)
	assert.ElementsMatch(t, []string{"appB", "Shared", "appA"}, updates)
	assert.Equal(t, []string{"appC"}, orphans)
	for _, o := range orphans {
		assert.NotContains(t, updates, o)
	}
}
