// File: doc.go
// Title: Logging Package Documentation
// Description: Package documentation for the structured logger.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14

/*
Package log provides the structured logger used by every termcore package.

It wraps go.uber.org/zap behind a small API that takes optional Fields maps:

	logger := log.NewWithConfig(log.Config{Level: log.LevelDebug, Format: log.FormatJSON, Name: "termcore"})
	logger.Info("command executed", log.Fields{"command": "scan", "mode": "security-assessment"})

	reqLogger := logger.WithRequestID("req-123")
	reqLogger.Audit("invocation recorded", log.Fields{"status": "success"})

Audit entries are written regardless of the configured minimum level. Timers
measure an operation and log its duration when stopped:

	timer := logger.StartTimer("registry_build")
	defer timer.Stop()
*/
package log
