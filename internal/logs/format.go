package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Record is one decoded JSON log line.
type Record struct {
	Time      string
	Level     string
	Message   string
	Component string
	JobID     string
	TaskIndex int
	Attrs     map[string]any
}

// Filter selects records. Zero values match everything.
type Filter struct {
	JobID    string
	MinLevel string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "warning": 2, "error": 3}

// Parse decodes a JSON log line. Lines that are not JSON objects return false.
func Parse(line string) (Record, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Record{}, false
	}
	rec := Record{Attrs: make(map[string]any)}
	for key, value := range raw {
		switch key {
		case "ts":
			rec.Time, _ = value.(string)
		case "level":
			rec.Level, _ = value.(string)
		case "msg":
			rec.Message, _ = value.(string)
		case "component":
			rec.Component, _ = value.(string)
		case "job_id":
			rec.JobID, _ = value.(string)
		case "task_index":
			if f, ok := value.(float64); ok {
				rec.TaskIndex = int(f)
			}
		default:
			rec.Attrs[key] = value
		}
	}
	return rec, true
}

// Match reports whether rec passes f.
func (f Filter) Match(rec Record) bool {
	if f.JobID != "" && !strings.HasPrefix(rec.JobID, f.JobID) {
		return false
	}
	if f.MinLevel != "" {
		threshold, ok := levelRank[strings.ToLower(f.MinLevel)]
		if ok && levelRank[strings.ToLower(rec.Level)] < threshold {
			return false
		}
	}
	return true
}

// Format renders rec as a single readable line.
func Format(rec Record) string {
	var b strings.Builder
	if rec.Time != "" {
		b.WriteString(rec.Time)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(rec.Level))

	var subject []string
	if rec.Component != "" {
		subject = append(subject, rec.Component)
	}
	if rec.JobID != "" {
		id := rec.JobID
		if len(id) > 8 {
			id = id[:8]
		}
		subject = append(subject, "job "+id)
	}
	if rec.TaskIndex > 0 {
		subject = append(subject, fmt.Sprintf("task #%d", rec.TaskIndex))
	}
	if len(subject) > 0 {
		b.WriteString(strings.Join(subject, " · "))
		b.WriteString(": ")
	}
	b.WriteString(rec.Message)

	keys := make([]string, 0, len(rec.Attrs))
	for key := range rec.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, rec.Attrs[key])
	}
	return b.String()
}

// Render parses, filters and formats lines. Lines that are not JSON are
// passed through unless a filter is active.
func Render(lines []string, f Filter) []string {
	out := make([]string, 0, len(lines))
	active := f != Filter{}
	for _, line := range lines {
		rec, ok := Parse(line)
		if !ok {
			if !active && strings.TrimSpace(line) != "" {
				out = append(out, line)
			}
			continue
		}
		if f.Match(rec) {
			out = append(out, Format(rec))
		}
	}
	return out
}
