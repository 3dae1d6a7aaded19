// Package logging also provides the audit journal: one JSON line per gallery
// lifecycle event, written to .lightbox/logs/<date>_audit.log.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names an audit event
type AuditEventType string

const (
	// Session lifecycle -> session_event/4
	AuditSessionMount   AuditEventType = "session_mount"
	AuditSessionClose   AuditEventType = "session_close"
	AuditSessionUnmount AuditEventType = "session_unmount"

	// Autoplay -> autoplay_event/4
	AuditAutoplayStart AuditEventType = "autoplay_start"
	AuditAutoplayStop  AuditEventType = "autoplay_stop"

	// Image sources -> source_event/5
	AuditSourceLoad   AuditEventType = "source_load"
	AuditSourceReload AuditEventType = "source_reload"
	AuditSourceError  AuditEventType = "source_error"

	// Catalog -> catalog_op/5
	AuditCatalogCreate AuditEventType = "catalog_create"
	AuditCatalogAdd    AuditEventType = "catalog_add"
	AuditCatalogQuery  AuditEventType = "catalog_query"
)

// =============================================================================
// AUDIT EVENT STRUCTURE
// =============================================================================

// AuditEvent is one journal entry.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`      // Unix milliseconds
	EventType  AuditEventType         `json:"event"`   // Event kind
	Category   string                 `json:"cat"`     // Log category
	SessionID  string                 `json:"session"` // Gallery session, if any
	Target     string                 `json:"target"`  // Directory, slug or file
	Success    bool                   `json:"success"` // Operation succeeded
	Count      int                    `json:"count"`   // Images involved
	DurationMs int64                  `json:"dur_ms"`  // Duration in milliseconds
	Error      string                 `json:"error"`   // Error message if failed
	Message    string                 `json:"msg"`     // Human-readable message
	Fields     map[string]interface{} `json:"fields"`  // Additional structured fields
	Fact       string                 `json:"fact"`    // One-line predicate form for grepping
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger writes audit events, optionally scoped to a session.
type AuditLogger struct {
	sessionID string
	category  Category
}

// InitAudit opens the audit journal. No-op unless debug mode is on.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil // Already initialized
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# Audit log started at %s\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)
	return nil
}

// CloseAudit closes the audit journal
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger
func Audit() *AuditLogger {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithSession creates an audit logger scoped to a gallery session
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID, category: CategorySession}
}

// AuditWithCategory creates an audit logger scoped to a category
func AuditWithCategory(category Category) *AuditLogger {
	return &AuditLogger{category: category}
}

// =============================================================================
// AUDIT LOGGING METHODS
// =============================================================================

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" && a.sessionID != "" {
		event.SessionID = a.sessionID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}
	if event.Fields == nil {
		event.Fields = make(map[string]interface{})
	}
	event.Fact = formatFact(event)

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile == nil {
		return
	}
	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// formatFact renders an event as a single predicate line
func formatFact(e AuditEvent) string {
	switch e.EventType {
	case AuditSessionMount, AuditSessionClose, AuditSessionUnmount:
		return fmt.Sprintf("session_event(%d, /%s, \"%s\", %d).",
			e.Timestamp, e.EventType, e.SessionID, e.Count)

	case AuditAutoplayStart, AuditAutoplayStop:
		return fmt.Sprintf("autoplay_event(%d, /%s, \"%s\", %d).",
			e.Timestamp, e.EventType, e.SessionID, e.DurationMs)

	case AuditSourceLoad, AuditSourceReload, AuditSourceError:
		return fmt.Sprintf("source_event(%d, /%s, \"%s\", %d, %v).",
			e.Timestamp, e.EventType, escapeString(e.Target), e.Count, e.Success)

	case AuditCatalogCreate, AuditCatalogAdd, AuditCatalogQuery:
		return fmt.Sprintf("catalog_op(%d, /%s, \"%s\", %d, %v).",
			e.Timestamp, e.EventType, escapeString(e.Target), e.Count, e.Success)

	default:
		return fmt.Sprintf("audit_event(%d, /%s, \"%s\", \"%s\", %v).",
			e.Timestamp, e.EventType, e.Category, escapeString(e.Message), e.Success)
	}
}

func escapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// CONVENIENCE METHODS
// =============================================================================

// SessionMount records a session being mounted or opened
func (a *AuditLogger) SessionMount(variant string, images, index int) {
	a.Log(AuditEvent{
		EventType: AuditSessionMount,
		Success:   true,
		Count:     images,
		Message:   fmt.Sprintf("%s session mounted at %d", variant, index),
		Fields:    map[string]interface{}{"variant": variant, "index": index},
	})
}

// SessionEnd records a close (modal) or unmount
func (a *AuditLogger) SessionEnd(closed bool) {
	eventType := AuditSessionUnmount
	if closed {
		eventType = AuditSessionClose
	}
	a.Log(AuditEvent{EventType: eventType, Success: true})
}

// AutoplayChange records the scheduler starting or stopping
func (a *AuditLogger) AutoplayChange(running bool, interval time.Duration) {
	eventType := AuditAutoplayStop
	if running {
		eventType = AuditAutoplayStart
	}
	a.Log(AuditEvent{EventType: eventType, Success: true, DurationMs: interval.Milliseconds()})
}

// SourceLoad records a directory load or reload
func (a *AuditLogger) SourceLoad(dir string, count int, reload bool, duration time.Duration, err error) {
	eventType := AuditSourceLoad
	if reload {
		eventType = AuditSourceReload
	}
	event := AuditEvent{
		EventType:  eventType,
		Target:     dir,
		Count:      count,
		Success:    err == nil,
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		event.EventType = AuditSourceError
		event.Error = err.Error()
	}
	a.Log(event)
}

// CatalogOp records a catalog write or query
func (a *AuditLogger) CatalogOp(eventType AuditEventType, target string, count int, err error) {
	event := AuditEvent{
		EventType: eventType,
		Target:    target,
		Count:     count,
		Success:   err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	a.Log(event)
}
