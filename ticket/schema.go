package ticket

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
)

var schemaJSON = sync.OnceValue(func() string {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	schema := reflector.Reflect(&Batch{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		// Batch contains nothing a JSON marshaler can reject.
		panic(err)
	}
	return string(data)
})

// Schema returns the JSON schema of the wire format as indented JSON.
// It is deterministic and embedded verbatim into the system prompt.
func Schema() string {
	return schemaJSON()
}
