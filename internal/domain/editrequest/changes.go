package editrequest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Changes is a proposed-change payload: field name to new value, with
// values that are scalars or one-level-nested objects. It preserves JSON
// key insertion order so the diff shown to a reviewer lists fields in the
// order the submitter wrote them. Nested object values decode to Changes
// as well, again in order.
//
// A Changes value is immutable after creation apart from Set, which only
// the tests use.
type Changes struct {
	keys   []string
	values map[string]interface{}
}

// Len returns the number of top-level keys.
func (c Changes) Len() int { return len(c.keys) }

// Keys returns the top-level keys in insertion order.
func (c Changes) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Get returns the value for key. The second return is false when the key
// is absent.
func (c Changes) Get(key string) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Set assigns a value, appending the key if it is new.
func (c *Changes) Set(key string, value interface{}) {
	if c.values == nil {
		c.values = make(map[string]interface{})
	}
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Map converts to a plain map, with nested Changes converted one level down.
func (c Changes) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(c.keys))
	for k, v := range c.values {
		if nested, ok := v.(Changes); ok {
			out[k] = nested.Map()
		} else {
			out[k] = v
		}
	}
	return out
}

func (c Changes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(c.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Changes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("proposed changes must be a JSON object")
	}
	parsed, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// decodeObject reads key/value pairs up to and including the closing brace,
// recording key order. The opening brace has already been consumed.
func decodeObject(dec *json.Decoder) (Changes, error) {
	c := Changes{values: make(map[string]interface{})}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Changes{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Changes{}, fmt.Errorf("unexpected token %v for object key", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Changes{}, err
		}
		if _, exists := c.values[key]; !exists {
			c.keys = append(c.keys, key)
		}
		c.values[key] = val
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Changes{}, err
	}
	return c, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			var arr []interface{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		// string, float64, bool or nil
		return t, nil
	}
}
