// Package logger builds configured log/slog loggers for the module.
//
// It provides a small factory over slog handlers (JSON for production
// aggregation, text for development), env-driven defaults, and attribute
// helpers for the values this module logs repeatedly (errors, components,
// risk scores). Packages accept a *slog.Logger via options and fall back
// to slog.Default(), so the factory is a convenience, not a requirement.
package logger
