package editrequest

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestChangesUnmarshal_PreservesKeyOrder(t *testing.T) {
	raw := `{"notes":"x","first_name":"Alice","gender":"female","allergies":null}`
	var c Changes
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := []string{"notes", "first_name", "gender", "allergies"}
	if !reflect.DeepEqual(c.Keys(), want) {
		t.Errorf("expected keys %v, got %v", want, c.Keys())
	}
	if v, _ := c.Get("first_name"); v != "Alice" {
		t.Errorf("expected Alice, got %v", v)
	}
	if v, ok := c.Get("allergies"); !ok || v != nil {
		t.Errorf("expected explicit null, got %v (present=%v)", v, ok)
	}
}

func TestChangesUnmarshal_NestedObjectOrder(t *testing.T) {
	raw := `{"contact":{"email":"a@x.com","phone":"111"},"last_name":"Smith"}`
	var c Changes
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	v, ok := c.Get("contact")
	if !ok {
		t.Fatal("expected contact key")
	}
	nested, ok := v.(Changes)
	if !ok {
		t.Fatalf("expected nested Changes, got %T", v)
	}
	want := []string{"email", "phone"}
	if !reflect.DeepEqual(nested.Keys(), want) {
		t.Errorf("expected sub-keys %v, got %v", want, nested.Keys())
	}
}

func TestChangesMarshal_RoundTrip(t *testing.T) {
	raw := `{"zeta":"1","alpha":{"b":"2","a":"3"},"mid":42}`
	var c Changes
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"zeta":"1","alpha":{"b":"2","a":"3"},"mid":42}` {
		t.Errorf("round trip changed the payload: %s", out)
	}
}

func TestChangesUnmarshal_RejectsNonObject(t *testing.T) {
	var c Changes
	if err := json.Unmarshal([]byte(`["not","an","object"]`), &c); err == nil {
		t.Error("expected error for array payload")
	}
	if err := json.Unmarshal([]byte(`"scalar"`), &c); err == nil {
		t.Error("expected error for scalar payload")
	}
}

func TestChangesMap_ConvertsNested(t *testing.T) {
	var c Changes
	if err := json.Unmarshal([]byte(`{"contact":{"phone":"111"},"notes":"n"}`), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	m := c.Map()
	contact, ok := m["contact"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected plain map for nested value, got %T", m["contact"])
	}
	if contact["phone"] != "111" {
		t.Errorf("expected phone 111, got %v", contact["phone"])
	}
}

func TestChangesSet(t *testing.T) {
	var c Changes
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)
	if c.Len() != 2 {
		t.Errorf("expected 2 keys, got %d", c.Len())
	}
	if v, _ := c.Get("a"); v != 3 {
		t.Errorf("expected overwrite to 3, got %v", v)
	}
	if !reflect.DeepEqual(c.Keys(), []string{"a", "b"}) {
		t.Errorf("unexpected key order: %v", c.Keys())
	}
}
