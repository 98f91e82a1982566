package ingest

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeTags turns a raw tags value into trimmed, de-duplicated tag
// names in source order. Problems never fail the note: a non-list value
// means no tags, and bad elements are dropped. Each problem is returned as
// a *TagWarning.
func NormalizeTags(raw any) ([]string, []error) {
	if raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, []error{&TagWarning{Index: -1, Reason: fmt.Sprintf("tags is %T, not a list; treating as no tags", raw)}}
	}

	var (
		tags     []string
		warnings []error
		seen     = make(map[string]bool, len(items))
	)
	for i, item := range items {
		name, ok := tagString(item)
		if !ok {
			warnings = append(warnings, &TagWarning{Index: i, Reason: fmt.Sprintf("unsupported tag value of type %T", item)})
			continue
		}

		name = strings.TrimSpace(name)
		if name == "" {
			warnings = append(warnings, &TagWarning{Index: i, Reason: "empty tag"})
			continue
		}

		if seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}

	return tags, warnings
}

// tagString coerces a scalar tag element to its string form.
func tagString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case time.Time:
		return t.Format(DateLayout), true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t), true
	}
	return "", false
}
