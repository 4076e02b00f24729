package sstv

import (
	"time"

	"github.com/google/uuid"
)

/*
 * Diagnostics
 *
 * The teacher's global log.Printf calls (e.g. "[SSTV VIS] ...") can't be
 * traced back to a particular instance when several extensions run at
 * once. Every Diagnostic this engine emits carries the owning
 * Controller's session id in kv_data["session"], so a host embedding
 * several controllers can demultiplex log lines the way the teacher's
 * single-process-per-decoder model never had to.
 */

func newSessionID() uuid.UUID {
	return uuid.New()
}

// withSession stamps kv with the session id, allocating a map if kv is
// nil. kv is mutated and returned for convenience.
func withSession(sessionID uuid.UUID, kv map[string]any) map[string]any {
	if kv == nil {
		kv = make(map[string]any, 1)
	}
	kv["session"] = sessionID.String()
	return kv
}

func newDiagnostic(sessionID uuid.UUID, level DiagnosticLevel, category DiagnosticCategory, message string, kv map[string]any) Diagnostic {
	return Diagnostic{
		Level:     level,
		Category:  category,
		Message:   message,
		KVData:    withSession(sessionID, kv),
		Timestamp: time.Now(),
	}
}
