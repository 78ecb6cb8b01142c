package file

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBase = "https://hexcrawl.invalid/schemas/"

var (
	schemaOnce     sync.Once
	mapSchema      *jsonschema.Schema
	campaignSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchemas() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true
	for _, name := range []string{"map.schema.json", "campaign.schema.json"} {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemaErr = err
			return
		}
		if err := c.AddResource(schemaBase+name, bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("adding schema %s: %w", name, err)
			return
		}
	}
	if mapSchema, schemaErr = c.Compile(schemaBase + "map.schema.json"); schemaErr != nil {
		return
	}
	campaignSchema, schemaErr = c.Compile(schemaBase + "campaign.schema.json")
}

// validate checks raw JSON against the map or campaign schema.
func validate(raw []byte, campaign bool) error {
	schemaOnce.Do(loadSchemas)
	if schemaErr != nil {
		return fmt.Errorf("compiling schemas: %w", schemaErr)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}
	s := mapSchema
	if campaign {
		s = campaignSchema
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}
