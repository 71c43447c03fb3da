// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Every servo service accepts a context and extracts the logger from it, so a
// bulk refresh unit or an HTTP request can carry its own scoped fields.
package logger
