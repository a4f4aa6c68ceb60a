package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// schemaKeys are the classification fields, in the order they are written
var schemaKeys = []string{"content_type", "main_topics", "key_entities", "urgency_level", "action_items", "summary"}

// MarshalJSON writes a degraded classification as raw_analysis and/or error
// only. Any other classification carries every schema key, lists as arrays
// even when empty, followed by the extra keys the model returned.
func (c Classification) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	field := func(key string, value any) error {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		k, err := encode(key)
		if err != nil {
			return err
		}
		v, err := encode(value)
		if err != nil {
			return fmt.Errorf("classification %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if c.Degraded() {
		if c.RawAnalysis != "" {
			if err := field("raw_analysis", c.RawAnalysis); err != nil {
				return nil, err
			}
		}
		if c.Error != "" {
			if err := field("error", c.Error); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	values := []any{
		c.ContentType,
		orEmpty(c.MainTopics),
		orEmpty(c.KeyEntities),
		c.UrgencyLevel,
		orEmpty(c.ActionItems),
		c.Summary,
	}
	for i, key := range schemaKeys {
		if err := field(key, values[i]); err != nil {
			return nil, err
		}
	}

	extra := make([]string, 0, len(c.Extra))
	for key := range c.Extra {
		if !isSchemaKey(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		if err := field(key, c.Extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads what MarshalJSON writes, and tolerates the loose
// shapes a model produces: a string where a list belongs becomes a one-item
// list, and a number or list where a string belongs becomes its JSON text.
func (c *Classification) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = fromFields(fields)
	return nil
}

// fromFields projects a decoded JSON object onto a Classification. An object
// with none of the schema keys but a raw_analysis or error key is degraded.
func fromFields(fields map[string]json.RawMessage) Classification {
	hasSchema := false
	for _, key := range schemaKeys {
		if _, ok := fields[key]; ok {
			hasSchema = true
			break
		}
	}

	_, hasRaw := fields["raw_analysis"]
	_, hasErr := fields["error"]
	if !hasSchema && (hasRaw || hasErr) {
		return Classification{
			RawAnalysis: looseString(fields["raw_analysis"]),
			Error:       looseString(fields["error"]),
		}
	}

	c := Classification{
		ContentType:  looseString(fields["content_type"]),
		MainTopics:   looseList(fields["main_topics"]),
		KeyEntities:  looseList(fields["key_entities"]),
		UrgencyLevel: looseString(fields["urgency_level"]),
		ActionItems:  looseList(fields["action_items"]),
		Summary:      looseString(fields["summary"]),
	}
	for key, raw := range fields {
		if isSchemaKey(key) {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[key] = v
	}
	return c
}

// looseString returns a JSON string as is and any other value as its
// compact JSON text. Missing and null values are empty.
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// looseList reads an array of any values as strings and wraps a single
// value in a list. Blank items are dropped; an empty result is nil.
func looseList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if raw[0] != '[' || json.Unmarshal(raw, &items) != nil {
		items = []json.RawMessage{raw}
	}

	var out []string
	for _, item := range items {
		if s := looseString(item); strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func isSchemaKey(key string) bool {
	for _, k := range schemaKeys {
		if k == key {
			return true
		}
	}
	return false
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// encode marshals v without HTML escaping and without the trailing newline
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
