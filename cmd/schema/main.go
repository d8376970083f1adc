// Command schema emits a JSON schema describing the YAML configuration
// file, derived from the config.Config struct tags. Editors pick it up for
// completion and validation. Run via go:generate in pkg/config or directly
// with an optional output path argument.
package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/tripmind/tripmind/pkg/config"
)

func main() {
	out := "config-schema.json"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	schema := jsonschema.Reflect(&config.Config{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("marshal schema: %v", err)
	}

	if err := os.WriteFile(out, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("write %s: %v", out, err)
	}
	log.Printf("schema written to %s", out)
}
