// Command schema generates JSON Schemas for the wire protocol messages and
// the server profile format. The schemas are consumed by the WebXR client
// build to validate frames in development, and by editors for profile
// completion in configs/.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/skyshot-game/skyshot/game/config"
	"github.com/skyshot-game/skyshot/game/protocol"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schemas := buildSchemas()
	for _, name := range schemaNames(schemas) {
		outPath := filepath.Join(outDir, name+".schema.json")
		if err := writeSchema(outPath, schemas[name]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", outPath, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", outPath)
	}
}

// buildSchemas reflects every externally visible wire and config type into a
// named schema.
func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	schemas := map[string]*jsonschema.Schema{
		"profile":        reflector.Reflect(new(config.ServerConfig)),
		"envelope":       reflector.Reflect(new(protocol.Envelope)),
		"position":       reflector.Reflect(new(protocol.Position)),
		"room_confirm":   reflector.Reflect(new(protocol.RoomConfirm)),
		"bullet_spawned": reflector.Reflect(new(protocol.BulletSpawned)),
		"bird_spawned":   reflector.Reflect(new(protocol.BirdSpawned)),
		"score_update":   reflector.Reflect(new(protocol.ScoreUpdate)),
	}

	schemas["profile"].Title = "Skyshot Server Profile"
	schemas["profile"].Description = "Validates server profiles in configs/"
	schemas["envelope"].Title = "Skyshot Wire Envelope"
	schemas["envelope"].Description = "Common routing fields carried by every relay frame"

	return schemas
}

// schemaNames returns the schema names in stable order, for output and tests.
func schemaNames(schemas map[string]*jsonschema.Schema) []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
