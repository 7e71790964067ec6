package netlist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// schema constrains CUE network files before they are decoded.
const schema = `
#Kind: "input" | "output" | "buf" | "not" | "and" | "or" | "nand" | "nor" | "xor" | "xnor"

#Element: {
	id:      string & =~"^[^. \t]+$"
	kind:    #Kind
	inputs?: int & >=0
}

#Wire: {
	from: string
	to: [...string]
}

#Network: {
	name: string | *""
	elements: [...#Element]
	wires: [...#Wire] | *[]
}
`

// LoadFile loads a description from a .yaml, .yml or .cue file.
func LoadFile(path string) (*Description, error) {
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".cue":
		return LoadCUE(path)
	default:
		return nil, fmt.Errorf("unsupported network file extension %q", ext)
	}
}

// LoadYAML reads a description from a YAML file. Unknown fields are
// rejected so typos do not silently drop wires.
func LoadYAML(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a description from YAML bytes.
func ParseYAML(data []byte) (*Description, error) {
	var desc Description
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &desc, nil
}

// LoadCUE reads a description from the top-level "network" field of a CUE
// file.
func LoadCUE(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}
	return ParseCUE(data, path)
}

// ParseCUE compiles CUE source, unifies its "network" field with the
// network schema and decodes it. filename is used in error positions.
func ParseCUE(data []byte, filename string) (*Description, error) {
	ctx := cuecontext.New()

	sch := ctx.CompileString(schema, cue.Filename("netlist-schema.cue"))
	if err := sch.Err(); err != nil {
		return nil, fmt.Errorf("compiling network schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	nv := v.LookupPath(cue.ParsePath("network"))
	if !nv.Exists() {
		return nil, &DescriptionError{Field: "network", Message: "network field is required", Pos: v.Pos()}
	}

	nv = nv.Unify(sch.LookupPath(cue.ParsePath("#Network")))
	if err := nv.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var desc Description
	if err := nv.Decode(&desc); err != nil {
		return nil, formatCUEError(err)
	}
	return &desc, nil
}

// formatCUEError keeps the first CUE error together with its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &DescriptionError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
