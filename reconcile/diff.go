package reconcile

import (
	"github.com/aws-samples/amazon-connect-cicd-workshop/flowstore"
	"github.com/aws-samples/amazon-connect-cicd-workshop/inventory"
)

// UpdatePair is a live flow matched by name to the definition it is
// overwritten with.
type UpdatePair struct {
	Live    inventory.LiveFlow
	Desired flowstore.FlowDefinition
}

// Plan is the create/update/orphan partition of one run.
type Plan struct {
	Creates []flowstore.FlowDefinition
	Updates []UpdatePair
	Orphans []inventory.LiveFlow
}

// Creates returns the desired flows with no live flow of the same name,
// in desired order. live is the snapshot taken before any mutation.
func Creates(desired []flowstore.FlowDefinition, live []inventory.LiveFlow) []flowstore.FlowDefinition {
	liveNames := make(map[string]bool, len(live))
	for _, l := range live {
		liveNames[l.Name] = true
	}

	out := make([]flowstore.FlowDefinition, 0)
	for _, d := range desired {
		if !liveNames[d.Name] {
			out = append(out, d)
		}
	}
	return out
}

// Updates pairs every live flow whose name is desired with its definition,
// in live order. live is the snapshot taken after creation. There is no
// content comparison: every match is overwritten.
func Updates(desired []flowstore.FlowDefinition, live []inventory.LiveFlow) []UpdatePair {
	byName := make(map[string]flowstore.FlowDefinition, len(desired))
	for _, d := range desired {
		byName[d.Name] = d
	}

	out := make([]UpdatePair, 0)
	for _, l := range live {
		if d, ok := byName[l.Name]; ok {
			out = append(out, UpdatePair{Live: l, Desired: d})
		}
	}
	return out
}

// Orphans returns the live flows named with prefix that are not desired.
func Orphans(desired []flowstore.FlowDefinition, live []inventory.LiveFlow, prefix string) []inventory.LiveFlow {
	names := flowstore.Names(desired)

	out := make([]inventory.LiveFlow, 0)
	for _, l := range inventory.AppFlows(live, prefix) {
		if !names[l.Name] {
			out = append(out, l)
		}
	}
	return out
}
