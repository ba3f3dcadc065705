// Package schema produces a JSON Schema description of a card's scripted
// ScriptDefinition, for designer tooling and CI validation of authored card
// scripts. Grounded on the teacher's effects/catalog/schema(_generate).go,
// which reflected the teacher's own contract-driven effect definitions into
// a JSON Schema document the same way.
package schema

import (
	"reflect"

	"github.com/invopop/jsonschema"

	"duelserver/internal/effectsrt"
)

// Build reflects effectsrt.ScriptDefinition into a JSON Schema document
// describing the authoring format for card scripts: the tagged-variant
// Condition/Action union, the CandidateFilter shape PENDING_* actions use,
// and the Target resolution vocabulary.
func Build() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	schema := reflector.ReflectFromType(reflect.TypeOf(effectsrt.ScriptDefinition{}))
	schema.Version = jsonschema.Version
	schema.Title = "Card Script Definition"
	schema.Description = "Designer-authored scripted card effect: hook-keyed conditions and actions evaluated by the Effect Runtime."
	return schema
}

// BuildCatalog wraps Build in the array-or-object envelope a whole card
// script catalog file is authored in, mirroring the teacher's
// array-or-object FileDefinitions convention for config/effects/definitions.json.
func BuildCatalog() *jsonschema.Schema {
	entry := Build()

	arraySchema := &jsonschema.Schema{
		Type:        "array",
		Title:       "Array Script Catalog",
		Description: "Card scripts expressed as an array of ScriptDefinition entries.",
		Items:       entry,
	}
	objectSchema := &jsonschema.Schema{
		Type:                 "object",
		Title:                "Object Script Catalog",
		Description:          "Card scripts expressed as an object keyed by card number.",
		AdditionalProperties: entry,
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Duel Server Card Script Catalog",
		Description: "Designer-authored card scripts consumed by the Effect Runtime.",
		OneOf:       []*jsonschema.Schema{arraySchema, objectSchema},
	}
}
