// Package privacylog keeps key material out of logs: attributes whose names
// look secret are replaced, key identifiers are replaced by per-process
// fingerprints.
package privacylog

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

const redactedValue = "[REDACTED]"

type attrAction int

const (
	keepAttr attrAction = iota
	redactAttr
	fingerprintAttr
)

var (
	// Random per process so fingerprints cannot be joined across restarts.
	fingerprintKey = newFingerprintKey()

	// Any attribute key containing one of these is redacted outright.
	sensitiveKeyParts = []string{
		"seed",
		"secret",
		"private",
		"entropy",
		"passphrase",
		"password",
		"mnemonic",
		"blinding",
		"token",
	}
	fingerprintKeys = map[string]struct{}{
		"key_id":    {},
		"keyid":     {},
		"signer_id": {},
	}
)

// SanitizingHandler rewrites every attribute before handing the record on.
type SanitizingHandler struct {
	next slog.Handler
}

func WrapHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &SanitizingHandler{next: next}
}

func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SanitizingHandler) Handle(ctx context.Context, rec slog.Record) error {
	clean := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(SanitizeAttr(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = SanitizeAttr(a)
	}
	return &SanitizingHandler{next: h.next.WithAttrs(clean)}
}

func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{next: h.next.WithGroup(name)}
}

// SanitizeAttr resolves LogValuers first so a value cannot smuggle secret
// fields past the key check.
func SanitizeAttr(a slog.Attr) slog.Attr {
	key := strings.TrimSpace(a.Key)
	switch classify(key) {
	case redactAttr:
		return slog.String(key, redactedValue)
	case fingerprintAttr:
		name := key
		if !strings.HasSuffix(strings.ToLower(name), "_fp") {
			name += "_fp"
		}
		return slog.String(name, FingerprintID(plainString(a.Value.Resolve())))
	}

	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return slog.Attr{Key: key, Value: v}
	}
	members := v.Group()
	clean := make([]slog.Attr, len(members))
	for i, m := range members {
		clean[i] = SanitizeAttr(m)
	}
	return slog.Attr{Key: key, Value: slog.GroupValue(clean...)}
}

// FingerprintID is stable within one process and unlinkable across restarts.
func FingerprintID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mac := hmac.New(sha256.New, fingerprintKey)
	mac.Write([]byte(value))
	return "fp_" + hex.EncodeToString(mac.Sum(nil)[:8])
}

func classify(key string) attrAction {
	key = strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return redactAttr
		}
	}
	if _, ok := fingerprintKeys[key]; ok {
		return fingerprintAttr
	}
	return keepAttr
}

func plainString(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}

func newFingerprintKey() []byte {
	k := make([]byte, 32)
	// crypto/rand.Read does not return an error on supported platforms.
	_, _ = rand.Read(k)
	return k
}
