package flowstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
	"github.com/aws-samples/amazon-connect-cicd-workshop/storage"
)

// Fetcher reads desired-state flow definitions from a blob store.
type Fetcher struct {
	store       storage.Store
	prefix      string
	placeholder string
	logger      *slog.Logger
}

// NewFetcher creates a fetcher reading every object under prefix and
// resolving placeholder in each body.
func NewFetcher(store storage.Store, prefix, placeholder string, logger *slog.Logger) (*Fetcher, error) {
	if store == nil {
		return nil, errors.WrapInvalid(fmt.Errorf("store cannot be nil"), "flowstore", "NewFetcher", "validate store")
	}
	if placeholder == "" {
		return nil, errors.WrapInvalid(fmt.Errorf("placeholder cannot be empty"), "flowstore", "NewFetcher", "validate placeholder")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		store:       store,
		prefix:      prefix,
		placeholder: placeholder,
		logger:      logger.With("component", "flowstore"),
	}, nil
}

// Fetch lists, reads and parses every desired-state object, substituting
// value for the placeholder. Definitions come back in key order. Every error
// matches errors.ErrStateFetch; malformed objects and duplicate names are
// classified invalid, store failures keep the store's classification.
func (f *Fetcher) Fetch(ctx context.Context, value string) ([]FlowDefinition, error) {
	keys, err := f.store.List(ctx, f.prefix)
	if err != nil {
		return nil, fetchError(err, "Fetch", fmt.Sprintf("list %q", f.prefix))
	}
	if len(keys) == 0 {
		f.logger.Warn("No desired-state objects found", "prefix", f.prefix)
	}

	flows := make([]FlowDefinition, 0, len(keys))
	for _, key := range keys {
		body, err := f.store.Get(ctx, key)
		if err != nil {
			return nil, fetchError(err, "Fetch", fmt.Sprintf("get %s", key))
		}

		def, err := Parse(key, ResolvePlaceholder(body, f.placeholder, value))
		if err != nil {
			return nil, err
		}
		if bytes.Contains([]byte(def.Content), []byte(f.placeholder)) {
			f.logger.Warn("Unresolved placeholder remains in flow content", "flow", def.Name, "key", key)
		}

		f.logger.Debug("Desired flow fetched", "flow", def.Name, "type", def.Type, "key", key)
		flows = append(flows, def)
	}

	if err := CheckDuplicates(flows); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrStateFetch, err), "flowstore", "Fetch", "check names")
	}

	f.logger.Info("Desired state fetched", "prefix", f.prefix, "flows", len(flows))
	return flows, nil
}

// ResolvePlaceholder replaces the first occurrence of token in body with value.
// The substitution is textual and happens before the body is parsed.
func ResolvePlaceholder(body []byte, token, value string) []byte {
	return bytes.Replace(body, []byte(token), []byte(value), 1)
}

// Parse decodes and validates one desired-state object body.
func Parse(key string, body []byte) (FlowDefinition, error) {
	if err := validateDocument(body); err != nil {
		return FlowDefinition{}, errors.WrapInvalid(
			fmt.Errorf("%w: %w: %s: %w", errors.ErrStateFetch, errors.ErrParsingFailed, key, err),
			"flowstore", "Parse", "validate document")
	}

	var def FlowDefinition
	if err := json.Unmarshal(body, &def); err != nil {
		return FlowDefinition{}, errors.WrapInvalid(
			fmt.Errorf("%w: %w: %s: %w", errors.ErrStateFetch, errors.ErrParsingFailed, key, err),
			"flowstore", "Parse", "decode document")
	}
	def.Key = key

	if err := def.Validate(); err != nil {
		return FlowDefinition{}, errors.WrapInvalid(
			fmt.Errorf("%w: %s: %w", errors.ErrStateFetch, key, err),
			"flowstore", "Parse", "validate definition")
	}
	return def, nil
}

func fetchError(err error, method, action string) error {
	wrapped := fmt.Errorf("%w: %w", errors.ErrStateFetch, err)
	switch errors.Classify(err) {
	case errors.ErrorTransient:
		return errors.WrapTransient(wrapped, "flowstore", method, action)
	case errors.ErrorInvalid:
		return errors.WrapInvalid(wrapped, "flowstore", method, action)
	default:
		return errors.WrapFatal(wrapped, "flowstore", method, action)
	}
}
