package editrequest

import (
	"bytes"
	"encoding/json"
)

// Schema bounds the editable surface of a record: field name to the legal
// sub-keys of a one-level nested object field, or nil for a flat field.
type Schema map[string][]string

// Allows reports whether field is part of the editable surface.
func (s Schema) Allows(field string) bool {
	_, ok := s[field]
	return ok
}

// AllowsSub reports whether sub is a legal sub-key of a nested field.
func (s Schema) AllowsSub(field, sub string) bool {
	for _, allowed := range s[field] {
		if allowed == sub {
			return true
		}
	}
	return false
}

// Validate checks every key and sub-key in changes against the schema.
func (s Schema) Validate(changes Changes) error {
	for _, field := range changes.Keys() {
		if !s.Allows(field) {
			return InvalidField(field)
		}
		nested, ok := valueAsChanges(changes, field)
		if !ok {
			continue
		}
		for _, sub := range nested.Keys() {
			if !s.AllowsSub(field, sub) {
				return InvalidField(field + "." + sub)
			}
		}
	}
	return nil
}

// FieldChange is one entry of a reviewer-facing diff. SubField is empty for
// flat fields. OldAbsent marks a field with no prior value, as opposed to a
// prior value that happens to be null.
type FieldChange struct {
	Field     string      `json:"field"`
	SubField  string      `json:"sub_field,omitempty"`
	Old       interface{} `json:"old"`
	New       interface{} `json:"new"`
	OldAbsent bool        `json:"old_absent,omitempty"`
}

// ComputeDiff compares a record's current editable values against proposed
// changes and returns one entry per differing field or sub-field, in the
// payload's key order. Fields whose proposed value equals the current value
// are omitted. Neither input is mutated.
func ComputeDiff(current map[string]interface{}, changes Changes, schema Schema) ([]FieldChange, error) {
	if err := schema.Validate(changes); err != nil {
		return nil, err
	}

	var out []FieldChange
	for _, field := range changes.Keys() {
		newVal, _ := changes.Get(field)
		curVal, hasCur := current[field]

		nested, newIsObject := newVal.(Changes)
		curMap, curIsMap := curVal.(map[string]interface{})
		if newIsObject && (curIsMap || !hasCur) {
			for _, sub := range nested.Keys() {
				nv, _ := nested.Get(sub)
				ov, hasOld := curMap[sub]
				if hasOld && equalValues(ov, nv) {
					continue
				}
				out = append(out, FieldChange{Field: field, SubField: sub, Old: ov, New: nv, OldAbsent: !hasOld})
			}
			continue
		}

		if hasCur && equalValues(curVal, newVal) {
			continue
		}
		out = append(out, FieldChange{Field: field, Old: curVal, New: newVal, OldAbsent: !hasCur})
	}
	return out, nil
}

// ApplyDiff merges proposed changes into the current editable values and
// returns the updated map. Flat fields are overwritten. Nested object
// fields are shallow-merged: sub-keys not mentioned in the proposed
// sub-mapping keep their existing values. The input map is not mutated.
func ApplyDiff(current map[string]interface{}, changes Changes, schema Schema) (map[string]interface{}, error) {
	if err := schema.Validate(changes); err != nil {
		return nil, err
	}

	updated := make(map[string]interface{}, len(current)+changes.Len())
	for k, v := range current {
		updated[k] = v
	}

	for _, field := range changes.Keys() {
		newVal, _ := changes.Get(field)

		nested, newIsObject := newVal.(Changes)
		if !newIsObject {
			updated[field] = newVal
			continue
		}

		merged := make(map[string]interface{})
		if existing, ok := updated[field].(map[string]interface{}); ok {
			for k, v := range existing {
				merged[k] = v
			}
		}
		for _, sub := range nested.Keys() {
			nv, _ := nested.Get(sub)
			merged[sub] = nv
		}
		updated[field] = merged
	}
	return updated, nil
}

// equalValues compares two values structurally via canonical JSON, so a
// stored number and a freshly decoded one compare equal regardless of
// concrete Go type.
func equalValues(a, b interface{}) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}

func valueAsChanges(c Changes, field string) (Changes, bool) {
	v, ok := c.Get(field)
	if !ok {
		return Changes{}, false
	}
	nested, ok := v.(Changes)
	return nested, ok
}
