package editrequest

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() Schema {
	return Schema{
		"first_name": nil,
		"last_name":  nil,
		"notes":      nil,
		"contact":    {"phone", "email"},
		"address":    {"line1", "city"},
	}
}

func mustChanges(t *testing.T, raw string) Changes {
	t.Helper()
	var c Changes
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal changes: %v", err)
	}
	return c
}

func TestComputeDiff_SkipsUnchangedFields(t *testing.T) {
	current := map[string]interface{}{"first_name": "Alice", "last_name": "Smith"}
	changes := mustChanges(t, `{"first_name":"Alice","last_name":"Jones"}`)

	diff, err := ComputeDiff(current, changes, testSchema())
	if err != nil {
		t.Fatalf("ComputeDiff failed: %v", err)
	}
	if len(diff) != 1 {
		t.Fatalf("expected 1 change, got %d", len(diff))
	}
	if diff[0].Field != "last_name" || diff[0].Old != "Smith" || diff[0].New != "Jones" {
		t.Errorf("unexpected change: %+v", diff[0])
	}
}

func TestComputeDiff_NestedField(t *testing.T) {
	// record {name:"Alice", contact:{phone:"111", email:"a@x.com"}},
	// proposed {contact:{phone:"222"}} -> one nested change 111 -> 222
	current := map[string]interface{}{
		"first_name": "Alice",
		"contact":    map[string]interface{}{"phone": "111", "email": "a@x.com"},
	}
	changes := mustChanges(t, `{"contact":{"phone":"222"}}`)

	diff, err := ComputeDiff(current, changes, testSchema())
	if err != nil {
		t.Fatalf("ComputeDiff failed: %v", err)
	}
	if len(diff) != 1 {
		t.Fatalf("expected 1 change, got %d", len(diff))
	}
	fc := diff[0]
	if fc.Field != "contact" || fc.SubField != "phone" || fc.Old != "111" || fc.New != "222" {
		t.Errorf("unexpected nested change: %+v", fc)
	}
}

func TestComputeDiff_NestedSkipsEqualSubValues(t *testing.T) {
	current := map[string]interface{}{
		"contact": map[string]interface{}{"phone": "111", "email": "a@x.com"},
	}
	changes := mustChanges(t, `{"contact":{"phone":"111","email":"b@x.com"}}`)

	diff, err := ComputeDiff(current, changes, testSchema())
	if err != nil {
		t.Fatalf("ComputeDiff failed: %v", err)
	}
	if len(diff) != 1 {
		t.Fatalf("expected 1 change, got %d", len(diff))
	}
	if diff[0].SubField != "email" {
		t.Errorf("expected email change, got %+v", diff[0])
	}
}

func TestComputeDiff_AbsentCurrentValue(t *testing.T) {
	current := map[string]interface{}{"first_name": "Alice"}
	changes := mustChanges(t, `{"notes":"new note","contact":{"phone":"111"}}`)

	diff, err := ComputeDiff(current, changes, testSchema())
	if err != nil {
		t.Fatalf("ComputeDiff failed: %v", err)
	}
	if len(diff) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(diff))
	}
	for _, fc := range diff {
		if !fc.OldAbsent {
			t.Errorf("expected OldAbsent for %+v", fc)
		}
		if fc.Old != nil {
			t.Errorf("expected nil old value for %+v", fc)
		}
	}
}

func TestComputeDiff_PreservesSubmissionOrder(t *testing.T) {
	current := map[string]interface{}{}
	changes := mustChanges(t, `{"notes":"n","first_name":"A","contact":{"email":"e","phone":"p"}}`)

	diff, err := ComputeDiff(current, changes, testSchema())
	if err != nil {
		t.Fatalf("ComputeDiff failed: %v", err)
	}
	got := make([]string, len(diff))
	for i, fc := range diff {
		got[i] = fc.Field
		if fc.SubField != "" {
			got[i] += "." + fc.SubField
		}
	}
	want := []string{"notes", "first_name", "contact.email", "contact.phone"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestComputeDiff_UnknownFieldFails(t *testing.T) {
	changes := mustChanges(t, `{"organization_id":"evil"}`)
	_, err := ComputeDiff(map[string]interface{}{}, changes, testSchema())
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

func TestComputeDiff_UnknownSubFieldFails(t *testing.T) {
	changes := mustChanges(t, `{"contact":{"fax":"none"}}`)
	_, err := ComputeDiff(map[string]interface{}{}, changes, testSchema())
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

func TestComputeDiff_DoesNotMutateInputs(t *testing.T) {
	current := map[string]interface{}{
		"contact": map[string]interface{}{"phone": "111"},
	}
	changes := mustChanges(t, `{"contact":{"phone":"222"}}`)

	if _, err := ComputeDiff(current, changes, testSchema()); err != nil {
		t.Fatalf("ComputeDiff failed: %v", err)
	}
	if current["contact"].(map[string]interface{})["phone"] != "111" {
		t.Error("ComputeDiff mutated its input")
	}
}

func TestApplyDiff_FlatOverwrite(t *testing.T) {
	current := map[string]interface{}{"first_name": "Alice", "notes": "old"}
	changes := mustChanges(t, `{"notes":"new"}`)

	updated, err := ApplyDiff(current, changes, testSchema())
	if err != nil {
		t.Fatalf("ApplyDiff failed: %v", err)
	}
	if updated["notes"] != "new" {
		t.Errorf("expected notes overwritten, got %v", updated["notes"])
	}
	if updated["first_name"] != "Alice" {
		t.Errorf("expected untouched field preserved, got %v", updated["first_name"])
	}
	if current["notes"] != "old" {
		t.Error("ApplyDiff mutated its input")
	}
}

func TestApplyDiff_NestedMergePreservesSiblings(t *testing.T) {
	current := map[string]interface{}{
		"contact": map[string]interface{}{"phone": "111", "email": "a@x.com"},
	}
	changes := mustChanges(t, `{"contact":{"phone":"222"}}`)

	updated, err := ApplyDiff(current, changes, testSchema())
	if err != nil {
		t.Fatalf("ApplyDiff failed: %v", err)
	}
	contact := updated["contact"].(map[string]interface{})
	if contact["phone"] != "222" {
		t.Errorf("expected phone 222, got %v", contact["phone"])
	}
	if contact["email"] != "a@x.com" {
		t.Errorf("expected email preserved, got %v", contact["email"])
	}
}

func TestApplyDiff_NestedOntoAbsentObject(t *testing.T) {
	current := map[string]interface{}{"first_name": "Alice"}
	changes := mustChanges(t, `{"address":{"city":"Pune"}}`)

	updated, err := ApplyDiff(current, changes, testSchema())
	if err != nil {
		t.Fatalf("ApplyDiff failed: %v", err)
	}
	address, ok := updated["address"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected address map, got %T", updated["address"])
	}
	if address["city"] != "Pune" {
		t.Errorf("expected city Pune, got %v", address["city"])
	}
}

func TestApplyDiff_UnknownFieldFails(t *testing.T) {
	changes := mustChanges(t, `{"id":"evil"}`)
	_, err := ApplyDiff(map[string]interface{}{}, changes, testSchema())
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}
