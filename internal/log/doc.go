// Package log provides the slog setup of mriview. Every logger it builds
// masks secrets before they reach the output: request headers configured
// for the analysis service often carry API keys, and a base URL may embed
// basic-auth credentials.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("request completed",
//	    "x-api-key", "abc123",                      // logged as ***REDACTED***
//	    "url", "https://user:pw@mri.example.com/",  // password masked
//	)
package log
