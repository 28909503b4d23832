package models

import (
	"fmt"
	"strings"
	"time"
)

// AuditKind labels the outcome a cycle recorded.
type AuditKind string

const (
	AuditCheck AuditKind = "CHECK"
	AuditAlert AuditKind = "ALERT"
	AuditError AuditKind = "ERROR"
	AuditCrash AuditKind = "CRASH"
)

// AuditCapacity bounds the trail; the oldest entry is evicted past it.
const AuditCapacity = 20

// AuditEntry is a single line of the monitoring trail.
type AuditEntry struct {
	Timestamp string    `json:"timestamp"`
	Kind      AuditKind `json:"kind"`
	Message   string    `json:"message"`
}

// NewAuditEntry stamps an entry with the given time.
func NewAuditEntry(at time.Time, kind AuditKind, message string) AuditEntry {
	return AuditEntry{
		Timestamp: at.UTC().Format(time.RFC3339),
		Kind:      kind,
		Message:   message,
	}
}

// AuditLog is the newest-first, capacity-bounded record of cycle outcomes.
// It is the system's only history.
type AuditLog struct {
	entries []AuditEntry
}

// Append prepends an entry and evicts the oldest once over capacity.
func (l *AuditLog) Append(e AuditEntry) {
	l.entries = append([]AuditEntry{e}, l.entries...)
	if len(l.entries) > AuditCapacity {
		l.entries = l.entries[:AuditCapacity]
	}
}

// Entries returns the trail newest-first.
func (l *AuditLog) Entries() []AuditEntry {
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of stored entries.
func (l *AuditLog) Len() int { return len(l.entries) }

// Head returns the most recent entry, if any.
func (l *AuditLog) Head() (AuditEntry, bool) {
	if len(l.entries) == 0 {
		return AuditEntry{}, false
	}
	return l.entries[0], true
}

// Encode flattens the trail to the pipe-delimited form kept in the state
// store. Pipes inside messages are replaced so Decode can round-trip.
func (l *AuditLog) Encode() string {
	parts := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		msg := strings.ReplaceAll(e.Message, "|", "/")
		parts = append(parts, fmt.Sprintf("%s;%s;%s", e.Timestamp, e.Kind, msg))
	}
	return strings.Join(parts, "|")
}

// DecodeAuditLog rebuilds a trail from its encoded form. Malformed segments
// are skipped rather than failing the whole trail.
func DecodeAuditLog(raw string) *AuditLog {
	l := &AuditLog{}
	if raw == "" {
		return l
	}
	for _, part := range strings.Split(raw, "|") {
		fields := strings.SplitN(part, ";", 3)
		if len(fields) != 3 {
			continue
		}
		l.entries = append(l.entries, AuditEntry{
			Timestamp: fields[0],
			Kind:      AuditKind(fields[1]),
			Message:   fields[2],
		})
	}
	if len(l.entries) > AuditCapacity {
		l.entries = l.entries[:AuditCapacity]
	}
	return l
}
