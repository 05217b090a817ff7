package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	return l, dir
}

func TestLogAndList(t *testing.T) {
	l, _ := newTestLogger(t)

	if err := l.Log(OpVaultOpen, "/tmp/test.kdbx", "", ResultSuccess); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if err := l.Log(OpEntryShow, "/tmp/test.kdbx", "Web/login.example.com", ResultSuccess); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	events, err := l.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List() returned %d events, want 2", len(events))
	}
	if events[0].Operation != OpVaultOpen || events[1].Operation != OpEntryShow {
		t.Errorf("events out of order: %v, %v", events[0].Operation, events[1].Operation)
	}
	if events[1].Path != "Web/login.example.com" {
		t.Errorf("Path = %q", events[1].Path)
	}
	if events[0].Chain.Sequence != 1 || events[1].Chain.Sequence != 2 {
		t.Errorf("sequences = %d, %d, want 1, 2", events[0].Chain.Sequence, events[1].Chain.Sequence)
	}
	if events[1].Chain.PrevHash != events[0].Chain.HMAC {
		t.Error("chain not linked")
	}
}

func TestListLimit(t *testing.T) {
	l, _ := newTestLogger(t)
	for i := 0; i < 5; i++ {
		if err := l.Log(OpGroupList, "v.kdbx", "Web/", ResultSuccess); err != nil {
			t.Fatal(err)
		}
	}
	events, err := l.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("List(2) returned %d events", len(events))
	}
	// Most recent events are kept.
	if events[1].Chain.Sequence != 5 {
		t.Errorf("last sequence = %d, want 5", events[1].Chain.Sequence)
	}
}

func TestVerifyIntactChain(t *testing.T) {
	l, _ := newTestLogger(t)
	for i := 0; i < 3; i++ {
		if err := l.Log(OpEntryField, "v.kdbx", "Web/login.example.com", ResultSuccess); err != nil {
			t.Fatal(err)
		}
	}

	result, err := l.Verify()
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !result.Valid {
		t.Errorf("Verify() invalid on intact chain: %v", result.Errors)
	}
	if result.RecordsVerified != 3 {
		t.Errorf("RecordsVerified = %d, want 3", result.RecordsVerified)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	l, dir := newTestLogger(t)
	if err := l.Log(OpEntryShow, "v.kdbx", "Web/login.example.com", ResultSuccess); err != nil {
		t.Fatal(err)
	}
	if err := l.Log(OpEntryShow, "v.kdbx", "Banking/account", ResultSuccess); err != nil {
		t.Fatal(err)
	}

	// Rewrite a path in place.
	name := time.Now().UTC().Format("2006-01") + ".jsonl"
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), "Banking/account", "Banking/altered", 1)
	if tampered == string(data) {
		t.Fatal("test setup: path not found in log file")
	}
	if err := os.WriteFile(path, []byte(tampered), 0600); err != nil {
		t.Fatal(err)
	}

	result, err := l.Verify()
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Valid {
		t.Error("Verify() valid = true on tampered log")
	}
}

func TestChainSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	l1, err := NewLogger(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := l1.Log(OpVaultOpen, "v.kdbx", "", ResultSuccess); err != nil {
		t.Fatal(err)
	}

	l2, err := NewLogger(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := l2.Log(OpGroupList, "v.kdbx", "", ResultSuccess); err != nil {
		t.Fatal(err)
	}

	result, err := l2.Verify()
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Errorf("chain broken across reopen: %v", result.Errors)
	}
	if result.RecordsTotal != 2 {
		t.Errorf("RecordsTotal = %d, want 2", result.RecordsTotal)
	}
}

func TestUnlockFailedEventCarriesNoSecrets(t *testing.T) {
	l, dir := newTestLogger(t)
	if err := l.Log(OpUnlockFailed, "v.kdbx", "", ResultError); err != nil {
		t.Fatal(err)
	}

	name := time.Now().UTC().Format("2006-01") + ".jsonl"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "password") {
		t.Errorf("log file mentions password: %s", data)
	}
}
