// Package config loads the serve pipeline's process-level configuration
// from YAML and, for the endpoint/role table, watches it for changes so
// role and scope requirements can be updated without a redeploy.
package config
