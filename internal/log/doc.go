// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// A tool whose job is finding leaked identifiers must not leak them
// itself through its own diagnostics. The SecureHandler masks attribute
// values whose keys or shapes look like captured personal data before
// records reach the underlying text/JSON handler:
//   - credentials and tokens (passwords, API keys, bearer/JWT tokens)
//   - device identifiers (IMEI, Android ID, advertising IDs, MAC)
//   - personal data keys (email, phone, OTP, card numbers)
//
// Even in verbose mode, sensitive values are masked to prevent
// accidental exposure in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("detection logged",
//	    "imei", "356938035643809", // masked before output
//	    "domain", "api.vendor.example.com",
//	)
package log
