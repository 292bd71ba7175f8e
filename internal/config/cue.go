// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

const (
	// MaxConfigFileSize bounds the config file accepted by Load.
	MaxConfigFileSize = 1 << 20

	schemaDefinition = "#Config"
)

// decodeConfigCUE unifies data with #Config and returns the document as a
// nested map. Every field is optional, so non-concrete values are not an error.
func decodeConfigCUE(filename string, data []byte) (map[string]any, error) {
	if len(data) > MaxConfigFileSize {
		return nil, fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), MaxConfigFileSize)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema, cue.Filename("config_schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath(schemaDefinition))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("config schema has no %s: %w", schemaDefinition, err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, cueError(filename, err)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(); err != nil {
		return nil, cueError(filename, err)
	}

	fields := map[string]any{}
	if err := unified.Decode(&fields); err != nil {
		return nil, cueError(filename, err)
	}
	return fields, nil
}

// cueError flattens a CUE error list into "<file>: <field.path>: <message>"
// lines.
func cueError(filename string, err error) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		msg := e.Error()
		if path := strings.Join(cueerrors.Path(e), "."); path != "" {
			if rest, ok := strings.CutPrefix(msg, path); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			}
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filename, lines[0])
	}
	return fmt.Errorf("%s: %d problems:\n  %s", filename, len(lines), strings.Join(lines, "\n  "))
}
