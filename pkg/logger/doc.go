// Package logger provides the structured logging interface used across pixdedup.
//
// It wraps zerolog behind a small Logger interface so packages can accept a
// logger by injection and tests can swap in NewNopLogger or NewTestLogger.
// Console output goes to stderr because stdout carries the audit trail
// ("removed <path>" lines) that users and scripts read.
//
// Basic usage:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("scan_dir", dir).Info("Scan started")
//	logger.WithError(err).Error("Run failed")
package logger
