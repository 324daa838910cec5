package plan

import (
	"gopkg.in/yaml.v3"

	"entity-schema/internal/schemafile"
)

// ExportSchemaFile merges the inferred schemas into a copy of base (which may
// be nil). Pinned entity references and paths are kept; failed entities keep
// their pinned table.
func ExportSchemaFile(result *Result, base *schemafile.File) *schemafile.File {
	out := &schemafile.File{Version: schemafile.CurrentVersion}
	if base != nil {
		out.Version = base.Version
		out.Tables = append(out.Tables, base.Tables...)
	}

	for _, e := range result.Entities {
		if e.Schema == nil {
			continue
		}

		out.Upsert(e.ID, schemafile.FromSchema(e.ID, e.Schema))
	}

	return out
}

// ExportSchemaYAML renders ExportSchemaFile as YAML.
func ExportSchemaYAML(result *Result, base *schemafile.File) ([]byte, error) {
	return yaml.Marshal(ExportSchemaFile(result, base))
}
