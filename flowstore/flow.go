package flowstore

import (
	"encoding/json"
	"fmt"
	"slices"

	connecttypes "github.com/aws/aws-sdk-go-v2/service/connect/types"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
)

// FlowDefinition is one desired-state flow read from the blob store.
// Content has already had its placeholder resolved.
type FlowDefinition struct {
	Name    string                       `json:"Name"`
	Type    connecttypes.ContactFlowType `json:"ContactFlowType"`
	Content string                       `json:"Content"`

	// Key is the blob-store key the definition was read from.
	Key string `json:"-"`
}

// Validate checks the definition is complete and names a known flow type.
func (f *FlowDefinition) Validate() error {
	if f.Name == "" {
		return errors.WrapInvalid(fmt.Errorf("flow name cannot be empty"), "flowstore", "Validate", "validation")
	}
	if !slices.Contains(f.Type.Values(), f.Type) {
		return errors.WrapInvalid(
			fmt.Errorf("flow %q has unknown type %q", f.Name, string(f.Type)),
			"flowstore", "Validate", "flow type validation")
	}
	if !json.Valid([]byte(f.Content)) {
		return errors.WrapInvalid(
			fmt.Errorf("flow %q content is not a JSON document", f.Name),
			"flowstore", "Validate", "flow content validation")
	}
	return nil
}

// Names returns the set of names in flows.
func Names(flows []FlowDefinition) map[string]bool {
	names := make(map[string]bool, len(flows))
	for _, f := range flows {
		names[f.Name] = true
	}
	return names
}

// CheckDuplicates returns an error matching errors.ErrDuplicateFlowName when two
// definitions share a name.
func CheckDuplicates(flows []FlowDefinition) error {
	seen := make(map[string]string, len(flows))
	for _, f := range flows {
		if prev, ok := seen[f.Name]; ok {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %q defined by %s and %s", errors.ErrDuplicateFlowName, f.Name, prev, f.Key),
				"flowstore", "CheckDuplicates", "desired name uniqueness check")
		}
		seen[f.Name] = f.Key
	}
	return nil
}
