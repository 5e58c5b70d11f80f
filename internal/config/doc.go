// Package config provides the configuration of mriview: where the analysis
// service lives, how requests are made, and how results are reported.
// Values come from defaults, a YAML file, a .env file, MRIVIEW_* environment
// variables and CLI flags, in increasing precedence.
package config
