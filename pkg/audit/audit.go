// Package audit records vault browse operations in an append-only JSONL
// log with an HMAC chain for tamper detection. Events carry entry and
// group paths only; field values and passwords are never written.
package audit

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/hkdf"
)

// Operation types.
const (
	OpVaultOpen    = "vault.open"
	OpUnlockFailed = "vault.unlock_failed"
	OpGroupList    = "group.list"
	OpGroupEnter   = "group.enter"
	OpEntryShow    = "entry.show"
	OpEntryField   = "entry.field"
)

// Result values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

const (
	keyFileName  = "audit.key"
	metaFileName = "audit.meta"
)

// Event is a single audit record.
type Event struct {
	Version   int    `json:"v"`
	ID        string `json:"id"`
	Timestamp string `json:"ts"`
	Operation string `json:"op"`
	Path      string `json:"path,omitempty"`
	Vault     string `json:"vault,omitempty"`
	Session   string `json:"session"`
	Result    string `json:"result"`
	Chain     Chain  `json:"chain"`
}

// Chain links an event to its predecessor for tamper detection.
type Chain struct {
	Sequence int64  `json:"seq"`
	PrevHash string `json:"prev"`
	HMAC     string `json:"hmac"`
}

// chainState is the persisted chain tail.
type chainState struct {
	Sequence int64  `json:"seq"`
	PrevHash string `json:"prev"`
}

// Logger appends events to monthly JSONL files under its directory.
type Logger struct {
	dir       string
	hmacKey   []byte
	mu        sync.Mutex
	sequence  int64
	prevHash  string
	sessionID string
}

// NewLogger opens (or initializes) the audit log in dir. A random log key
// is created on first use; the per-record HMAC key is derived from it with
// HKDF-SHA256.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("audit: failed to create directory: %w", err)
	}

	logKey, err := loadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, err
	}

	hkdfReader := hkdf.New(sha256.New, logKey, nil, []byte("kpcli-audit-v1"))
	hmacKey := make([]byte, 32)
	if _, err := hkdfReader.Read(hmacKey); err != nil {
		return nil, fmt.Errorf("audit: failed to derive HMAC key: %w", err)
	}

	l := &Logger{
		dir:       dir,
		hmacKey:   hmacKey,
		prevHash:  "genesis",
		sessionID: newSessionID(),
	}
	if err := l.loadChainState(); err != nil {
		// First run, or the meta file is gone. Verify() will still catch a
		// truncated chain because record HMACs no longer line up.
		l.sequence = 0
		l.prevHash = "genesis"
	}
	return l, nil
}

// Log appends one event.
func (l *Logger) Log(op, vault, path, result string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := Event{
		Version:   1,
		ID:        newEventID(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Operation: op,
		Path:      path,
		Vault:     vault,
		Session:   l.sessionID,
		Result:    result,
	}

	l.sequence++
	event.Chain.Sequence = l.sequence
	event.Chain.PrevHash = l.prevHash
	event.Chain.HMAC = l.recordHMAC(&event)
	l.prevHash = event.Chain.HMAC

	if err := l.writeEvent(&event); err != nil {
		return err
	}
	return l.saveChainState()
}

// recordHMAC computes the HMAC over every significant field of the event.
func (l *Logger) recordHMAC(event *Event) string {
	data := fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s|%s|%d|%s",
		event.Version,
		event.ID,
		event.Timestamp,
		event.Operation,
		event.Path,
		event.Vault,
		event.Session,
		event.Result,
		event.Chain.Sequence,
		event.Chain.PrevHash,
	)
	mac := hmac.New(sha256.New, l.hmacKey)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// writeEvent appends the event to the current month's log file.
func (l *Logger) writeEvent(event *Event) error {
	name := time.Now().UTC().Format("2006-01") + ".jsonl"
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("audit: failed to open log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: failed to marshal event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("audit: failed to write event: %w", err)
	}
	return nil
}

func (l *Logger) loadChainState() error {
	data, err := os.ReadFile(filepath.Join(l.dir, metaFileName))
	if err != nil {
		return err
	}
	var state chainState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	l.sequence = state.Sequence
	l.prevHash = state.PrevHash
	return nil
}

func (l *Logger) saveChainState() error {
	data, err := json.Marshal(chainState{Sequence: l.sequence, PrevHash: l.prevHash})
	if err != nil {
		return fmt.Errorf("audit: failed to marshal chain state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, metaFileName), data, 0600); err != nil {
		return fmt.Errorf("audit: failed to save chain state: %w", err)
	}
	return nil
}

// List returns up to limit events, oldest first. limit <= 0 means all.
func (l *Logger) List(limit int) ([]Event, error) {
	events, err := l.readAll()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

// VerifyResult reports the outcome of a chain verification.
type VerifyResult struct {
	Valid           bool     `json:"valid"`
	RecordsTotal    int      `json:"records_total"`
	RecordsVerified int      `json:"records_verified"`
	Errors          []string `json:"errors,omitempty"`
}

// Verify recomputes the HMAC chain over every record.
func (l *Logger) Verify() (*VerifyResult, error) {
	events, err := l.readAll()
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Valid: true, RecordsTotal: len(events)}
	prev := "genesis"
	for i, event := range events {
		if event.Chain.PrevHash != prev {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("record %d: chain broken (prev %s)", i, event.Chain.PrevHash))
		}
		if l.recordHMAC(&event) != event.Chain.HMAC {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("record %d: HMAC mismatch", i))
		} else {
			result.RecordsVerified++
		}
		prev = event.Chain.HMAC
	}
	return result, nil
}

// Prune deletes monthly log files whose month ended more than olderThan ago.
func (l *Logger) Prune(olderThan time.Duration) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	names, err := l.logFiles()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, name := range names {
		month, err := time.Parse("2006-01", strings.TrimSuffix(name, ".jsonl"))
		if err != nil {
			continue
		}
		if month.AddDate(0, 1, 0).Before(cutoff) {
			if err := os.Remove(filepath.Join(l.dir, name)); err != nil {
				return deleted, fmt.Errorf("audit: failed to remove %s: %w", name, err)
			}
			deleted++
		}
	}
	return deleted, nil
}

// readAll reads every event across the monthly files in chronological
// order. Unparsable lines are reported as errors, not skipped: the log is
// an integrity artifact.
func (l *Logger) readAll() ([]Event, error) {
	names, err := l.logFiles()
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(l.dir, name))
		if err != nil {
			return nil, fmt.Errorf("audit: failed to read %s: %w", name, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line == "" {
				continue
			}
			var event Event
			if err := json.Unmarshal([]byte(line), &event); err != nil {
				return nil, fmt.Errorf("audit: malformed record in %s: %w", name, err)
			}
			events = append(events, event)
		}
	}
	return events, nil
}

func (l *Logger) logFiles() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to read directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".jsonl") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// loadOrCreateKey reads the log key file, generating a fresh random key on
// first use.
func loadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, decodeErr := hex.DecodeString(strings.TrimSpace(string(data)))
		if decodeErr != nil {
			return nil, fmt.Errorf("audit: corrupt key file %s: %w", path, decodeErr)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("audit: failed to read key file: %w", err)
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("audit: failed to generate key: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0600); err != nil {
		return nil, fmt.Errorf("audit: failed to write key file: %w", err)
	}
	return key, nil
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("session-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// newEventID creates a time-sortable unique identifier: a 48-bit millisecond
// timestamp followed by 80 random bits, hex encoded.
func newEventID() string {
	ts := time.Now().UnixMilli()
	id := make([]byte, 16)
	for i := 5; i >= 0; i-- {
		id[i] = byte(ts & 0xff)
		ts >>= 8
	}
	if _, err := rand.Read(id[6:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(id)
}
