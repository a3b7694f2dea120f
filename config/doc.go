// Package config loads the reconciliation engine configuration from the environment.
//
// The hosting function sets the identity variables:
//
//	AWS_REGION          region of every API call
//	CONNECT_INSTANCEID  contact-center instance to reconcile
//	BUCKET              blob store bucket (desired state in, mapping archive out)
//	FUNCTION_ACCOUNT    account id, used to build bot alias ARNs
//	FUNCTION_APP        application name; flow name prefix and parameter path root
//	FUNCTION_ENV        environment name; bot alias name and parameter path segment
//
// Tunables use the CONNECTSYNC_ prefix, e.g. CONNECTSYNC_SOFT_DEADLINE=45s or
// CONNECTSYNC_ORPHAN_MARKER=z_. See Default for every value.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return fmt.Errorf("invalid configuration: %w", err)
//	}
package config
