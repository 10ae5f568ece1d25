// Package config loads the proxy configuration from a YAML file, environment
// variables and command-line flags, in increasing order of precedence, and
// validates it. The backend list is fixed once Load returns.
package config
