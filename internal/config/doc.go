// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources win for non-zero fields):
//  1. Command-line flags
//  2. Environment variables
//  3. JSON or YAML config file
//  4. Built-in defaults
//
// The main entry points are [GetStructuredConfig] for the raw merged
// configuration and [GetClientConfig] for the validated client view.
package config
