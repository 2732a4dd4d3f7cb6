package ticket

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSchema_ValidJSON(t *testing.T) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(Schema()), &decoded); err != nil {
		t.Fatalf("Schema() is not valid JSON: %s", err)
	}
}

func TestSchema_CoversRequiredFields(t *testing.T) {
	schema := Schema()
	for _, field := range append([]string{"tickets", "files", "changes"}, RequiredFields...) {
		if !strings.Contains(schema, `"`+field+`"`) {
			t.Errorf("Schema() missing field %q", field)
		}
	}
}

func TestSchema_Deterministic(t *testing.T) {
	if Schema() != Schema() {
		t.Error("Schema() is not deterministic across calls")
	}
}
