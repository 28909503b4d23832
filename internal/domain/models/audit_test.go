package models

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAuditLogBounded(t *testing.T) {
	var l AuditLog
	now := time.Now()
	for i := 0; i < AuditCapacity+5; i++ {
		l.Append(NewAuditEntry(now, AuditCheck, fmt.Sprintf("entry %d", i)))
	}
	if l.Len() != AuditCapacity {
		t.Fatalf("got %d entries, want %d", l.Len(), AuditCapacity)
	}
	head, ok := l.Head()
	if !ok {
		t.Fatalf("expected head")
	}
	if head.Message != fmt.Sprintf("entry %d", AuditCapacity+4) {
		t.Fatalf("head is %q, want newest", head.Message)
	}
}

func TestAuditLogEncodeDecode(t *testing.T) {
	var l AuditLog
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.Append(NewAuditEntry(at, AuditCheck, "VIX 18.40 zone NEUTRAL"))
	l.Append(NewAuditEntry(at.Add(15*time.Minute), AuditAlert, "🚨 PANIC (VIX 32.50). Buy $3000."))

	decoded := DecodeAuditLog(l.Encode())
	if decoded.Len() != 2 {
		t.Fatalf("got %d entries, want 2", decoded.Len())
	}
	head, _ := decoded.Head()
	if head.Kind != AuditAlert {
		t.Fatalf("head kind %s, want ALERT", head.Kind)
	}
	if head.Timestamp != "2026-03-01T12:15:00Z" {
		t.Fatalf("head timestamp %s", head.Timestamp)
	}
}

func TestAuditLogPipeInMessage(t *testing.T) {
	var l AuditLog
	l.Append(NewAuditEntry(time.Now(), AuditError, "fetch ^VIX: bad | response"))
	if strings.Count(l.Encode(), "|") != 0 {
		t.Fatalf("delimiter leaked into encoding: %q", l.Encode())
	}
	decoded := DecodeAuditLog(l.Encode())
	if decoded.Len() != 1 {
		t.Fatalf("got %d entries, want 1", decoded.Len())
	}
}

func TestDecodeAuditLogMalformed(t *testing.T) {
	decoded := DecodeAuditLog("garbage|2026-03-01T12:00:00Z;CHECK;ok|also;garbage")
	if decoded.Len() != 1 {
		t.Fatalf("got %d entries, want 1", decoded.Len())
	}
	if decoded.Len() > 0 {
		head, _ := decoded.Head()
		if head.Message != "ok" {
			t.Fatalf("head message %q", head.Message)
		}
	}
}

func TestDecodeAuditLogEmpty(t *testing.T) {
	if DecodeAuditLog("").Len() != 0 {
		t.Fatalf("empty input should decode to empty log")
	}
}
