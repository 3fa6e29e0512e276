package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders records for a terminal: a one-line header followed by
// indented fields. Info and above show a labelled subset of the attributes;
// debug records list every attribute as key: value.
type consoleHandler struct {
	out       *consoleOutput
	level     *slog.LevelVar
	addSource bool
	attrs     []kv
	prefix    string
}

// consoleOutput is shared by a handler and all of its WithAttrs/WithGroup
// clones.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
	// seen remembers the last rendered value per label, keyed by assessment.
	seen map[string]map[string]string
}

type kv struct {
	key   string
	value slog.Value
}

type consoleHeader struct {
	time      time.Time
	level     slog.Level
	component string
	stage     string
	requestID string
	message   string
	source    *slog.Source
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{
		out:       &consoleOutput{w: w, seen: make(map[string]map[string]string)},
		level:     lvl,
		addSource: addSource,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(ctx context.Context, record slog.Record) error {
	if !h.Enabled(ctx, record.Level) {
		return nil
	}

	fields := make([]kv, 0, len(h.attrs)+record.NumAttrs())
	fields = append(fields, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlat(fields, h.prefix, attr)
		return true
	})
	fields = lastValueWins(fields)

	header := consoleHeader{
		time:      record.Time,
		level:     record.Level,
		component: lookupField(fields, FieldComponent),
		stage:     lookupField(fields, FieldStage),
		requestID: lookupField(fields, FieldCorrelationID),
		message:   strings.TrimSpace(record.Message),
		source:    record.Source(),
	}
	if header.time.IsZero() {
		header.time = time.Now()
	}
	if header.message == "" {
		header.message = "(no message)"
	}

	var b strings.Builder
	header.writeTo(&b, h.addSource)

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	if record.Level < slog.LevelInfo {
		writeRawFields(&b, fields)
	} else {
		h.out.writeSummary(&b, header, fields)
	}
	_, err := io.WriteString(h.out.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = append([]kv(nil), h.attrs...)
	for _, attr := range attrs {
		clone.attrs = appendFlat(clone.attrs, h.prefix, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func (hd consoleHeader) writeTo(b *strings.Builder, withSource bool) {
	b.WriteString(formatTimestamp(hd.time))
	b.WriteByte(' ')
	b.WriteString(levelLabel(hd.level))
	if hd.component != "" {
		fmt.Fprintf(b, " [%s]", hd.component)
	}
	if subject := composeSubject(hd.stage, hd.requestID); subject != "" {
		b.WriteByte(' ')
		b.WriteString(subject)
	}
	b.WriteString(" – ")
	b.WriteString(hd.message)
	if withSource && hd.source != nil && hd.source.File != "" {
		fmt.Fprintf(b, " [%s:%d]", filepath.Base(hd.source.File), hd.source.Line)
	}
	b.WriteByte('\n')
}

// composeSubject renders "stage #abcd1234" from the stage and the first eight
// characters of the correlation ID.
func composeSubject(stage, requestID string) string {
	stage = strings.TrimSpace(stage)
	requestID = strings.TrimSpace(requestID)
	if len(requestID) > 8 {
		requestID = requestID[:8]
	}
	if requestID != "" {
		requestID = "#" + requestID
	}
	return strings.TrimSpace(stage + " " + requestID)
}

func writeRawFields(b *strings.Builder, fields []kv) {
	for _, f := range fields {
		if f.key == FieldComponent {
			continue
		}
		fmt.Fprintf(b, "    %s: %s\n", f.key, formatValue(f.value))
	}
}

func (o *consoleOutput) writeSummary(b *strings.Builder, hd consoleHeader, fields []kv) {
	shown, hidden := selectInfoFields(fields, infoAttrLimit)
	shown = o.dropRepeated(infoSummaryKey(hd.component, hd.requestID), shown, hd.level)
	for _, f := range shown {
		fmt.Fprintf(b, "    - %s: %s\n", f.label, f.value)
	}
	switch {
	case hidden == 1:
		b.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		fmt.Fprintf(b, "    + %d more fields hidden\n", hidden)
	}
}

// dropRepeated hides info fields whose value has not changed since the last
// record for the same assessment. Warnings and errors always show every field.
func (o *consoleOutput) dropRepeated(scope string, fields []infoField, level slog.Level) []infoField {
	if scope == "" || len(fields) == 0 {
		return fields
	}
	seen, ok := o.seen[scope]
	if !ok {
		seen = make(map[string]string)
		o.seen[scope] = seen
	}
	out := fields[:0:0]
	for _, f := range fields {
		prev, repeated := seen[f.label]
		seen[f.label] = f.value
		if level <= slog.LevelInfo && repeated && prev == f.value {
			continue
		}
		out = append(out, f)
	}
	return out
}

func appendFlat(dst []kv, prefix string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = joinKey(prefix, attr.Key)
		}
		for _, member := range value.Group() {
			dst = appendFlat(dst, next, member)
		}
		return dst
	}
	key := joinKey(prefix, attr.Key)
	if key == "" {
		return dst
	}
	return append(dst, kv{key: key, value: value})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// lastValueWins collapses repeated keys in place of their first occurrence,
// keeping the most recent value.
func lastValueWins(fields []kv) []kv {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := make([]kv, 0, len(fields))
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func lookupField(fields []kv, key string) string {
	for _, f := range fields {
		if f.key == key {
			return plainString(f.value)
		}
	}
	return ""
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
