package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema describes the config file for editors and the schema command.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

// SchemaJSON is Schema indented for humans.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
