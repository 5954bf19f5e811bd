// Package main provides the entry point for the sdksniff CLI.
//
// sdksniff inspects decoded outbound HTTP(S) traffic captured from mobile
// apps and their bundled SDKs, detects PII and device-identifier
// exfiltration, and scores the observed data collection.
//
// Usage:
//
//	sdksniff replay <flows-file>
//	sdksniff score --json
//
// See --help for all available options.
package main

// main is the entry point for sdksniff.
func main() {
	Execute()
}
