// File: audit.go
// Title: Audit Record Hand-off
// Description: The record emitted for every execution and the Auditor
//              seam it is handed to.
// Author: msto63
// Version: v0.1.1
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation
// - 2026-10-14 v0.1.1: Flush for pending hand-offs, duration_ms encoding

package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term/command"
)

// Branch names the dispatch path an execution took
type Branch string

const (
	BranchEmpty    Branch = "empty"
	BranchRejected Branch = "rejected"
	BranchCommand  Branch = "command"
	BranchHelp     Branch = "help"
	BranchClear    Branch = "clear"
	BranchMode     Branch = "mode"
	BranchUnknown  Branch = "unknown"
)

// AuditRecord describes one completed execution
type AuditRecord struct {
	ID        string         `json:"id"`
	Command   string         `json:"command"`
	Output    string         `json:"output"`
	Mode      string         `json:"mode"`
	Status    command.Status `json:"status"`
	Branch    Branch         `json:"branch"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"-"`
}

// MarshalJSON encodes Duration as fractional milliseconds in duration_ms
func (r AuditRecord) MarshalJSON() ([]byte, error) {
	type plain AuditRecord
	return json.Marshal(struct {
		plain
		DurationMS float64 `json:"duration_ms"`
	}{plain(r), float64(r.Duration.Nanoseconds()) / 1e6})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (r *AuditRecord) UnmarshalJSON(data []byte) error {
	type plain AuditRecord
	aux := struct {
		*plain
		DurationMS float64 `json:"duration_ms"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Duration = time.Duration(aux.DurationMS * float64(time.Millisecond))
	return nil
}

// Auditor receives audit records. Emit must not block for long; the
// engine calls it on its own goroutine and ignores whatever happens.
type Auditor interface {
	Emit(record AuditRecord)
}

// AuditorFunc adapts a function to the Auditor interface
type AuditorFunc func(record AuditRecord)

// Emit implements Auditor
func (f AuditorFunc) Emit(record AuditRecord) { f(record) }

// nopAuditor discards records
type nopAuditor struct{}

func (nopAuditor) Emit(AuditRecord) {}

// emit hands rec to the auditor out of band
func (e *Engine) emit(rec AuditRecord) {
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				e.logger.Warn("Audit emission panicked", mdwlog.Fields{
					"recordID": rec.ID,
					"panic":    fmt.Sprint(r),
				})
			}
		}()
		e.auditor.Emit(rec)
	}()
}

// Flush waits until every audit hand-off started so far has returned from
// the auditor, or ctx ends. Owners call it before closing the auditor.
func (e *Engine) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
