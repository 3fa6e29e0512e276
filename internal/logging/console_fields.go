package logging

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type infoField struct {
	label string
	value string
}

const (
	infoAttrLimit  = 8
	infoValueLimit = 120
	errorLimit     = 200
)

// infoPriority orders the fields shown at info level. Keys not listed follow
// in record order.
var infoPriority = []string{
	FieldEventType,
	FieldAudio,
	FieldReference,
	FieldTranscript,
	FieldLanguage,
	"status",
	FieldJobID,
	"attempt",
	FieldCacheHit,
	FieldRows,
	FieldWER,
	"accuracy",
	"error",
	FieldErrorHint,
	FieldImpact,
	"size_bytes",
	"elapsed",
	"reason",
}

var fieldLabels = map[string]string{
	FieldEventType:   "Event",
	FieldErrorHint:   "Hint",
	FieldAudioSHA256: "Audio SHA-256",
	FieldJobID:       "Job",
	FieldCacheHit:    "Cache Hit",
	FieldWER:         "WER",
	"size_bytes":     "Size",
}

// selectInfoFields picks at most limit labelled fields for an info record and
// counts the rest as hidden. Header keys are dropped silently; debug-only keys
// and oversized values count as hidden.
func selectInfoFields(attrs []kv, limit int) ([]infoField, int) {
	rank := make(map[string]int, len(infoPriority))
	for i, key := range infoPriority {
		rank[key] = i
	}
	ordered := make([]kv, 0, len(attrs))
	for _, attr := range attrs {
		if !isHeaderKey(attr.key) {
			ordered = append(ordered, attr)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iok := rank[ordered[i].key]
		rj, jok := rank[ordered[j].key]
		if iok && jok {
			return ri < rj
		}
		return iok && !jok
	})

	var shown []infoField
	hidden := 0
	for _, attr := range ordered {
		value := formatValueForKey(attr.key, attr.value)
		switch {
		case isDebugOnlyKey(attr.key):
			hidden++
		case attr.key != "error" && attr.key != FieldReference && len(value) > infoValueLimit:
			hidden++
		case limit > 0 && len(shown) >= limit:
			hidden++
		default:
			shown = append(shown, infoField{label: displayLabel(attr.key), value: value})
		}
	}
	return shown, hidden
}

// formatValueForKey renders sizes, durations, flags and scores for people.
func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case strings.HasSuffix(key, "_bytes") || key == "size":
		if v.Kind() == slog.KindInt64 && v.Int64() >= 0 {
			return humanize.Bytes(uint64(v.Int64()))
		}
		if v.Kind() == slog.KindUint64 {
			return humanize.Bytes(v.Uint64())
		}
	case v.Kind() == slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case (key == FieldWER || key == "accuracy") && v.Kind() == slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case key == "error":
		msg := strings.TrimSpace(plainString(v))
		if len(msg) > errorLimit {
			msg = msg[:errorLimit] + "…"
		}
		return msg
	}
	return formatValue(v)
}

func isHeaderKey(key string) bool {
	return key == "" || key == FieldStage || key == FieldCorrelationID || key == FieldComponent
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case FieldAudioSHA256, "staged_path", "cache_path", "url":
		return true
	}
	return strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir")
}

func displayLabel(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// infoSummaryKey scopes repeated-field suppression to one assessment.
func infoSummaryKey(component, requestID string) string {
	if id := strings.TrimSpace(requestID); id != "" {
		return id
	}
	return strings.TrimSpace(component)
}
