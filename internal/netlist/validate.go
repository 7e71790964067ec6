package netlist

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/logicsim/internal/logic"
)

// DescriptionError reports one problem in a network description.
type DescriptionError struct {
	Field   string // e.g. "elements[2].kind", "wires[0].to[1]"
	Message string
	Pos     token.Pos // CUE position if the description came from CUE
}

func (e *DescriptionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a description for unknown kinds, duplicate or malformed
// element IDs, wires to ports that do not exist, and input connectors driven
// by more than one wire. All problems are returned joined.
func Validate(desc *Description) error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &DescriptionError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(desc.Elements) == 0 {
		fail("elements", "at least one element is required")
	}

	outputs := make(map[logic.ConnectorID]bool)
	inputs := make(map[logic.ConnectorID]bool)
	seen := make(map[string]bool)

	for i, el := range desc.Elements {
		field := fmt.Sprintf("elements[%d]", i)
		switch {
		case el.ID == "":
			fail(field+".id", "id is required")
			continue
		case strings.ContainsAny(el.ID, ". \t"):
			fail(field+".id", "id %q must not contain dots or spaces", el.ID)
			continue
		case seen[el.ID]:
			fail(field+".id", "duplicate element id %q", el.ID)
			continue
		}
		seen[el.ID] = true

		if !slices.Contains(ValidKinds, el.Kind) {
			fail(field+".kind", "unknown kind %q", el.Kind)
			continue
		}
		if el.Inputs < 0 {
			fail(field+".inputs", "inputs must be non-negative")
			continue
		}
		if (el.Kind == KindBuf || el.Kind == KindNot) && el.Inputs > 1 {
			fail(field+".inputs", "%s takes exactly one input", el.Kind)
			continue
		}

		for p := 0; p < el.inputCount(); p++ {
			inputs[logic.PortID(el.ID, el.inputPort(p))] = true
		}
		if el.hasOutput() {
			outputs[logic.PortID(el.ID, "out")] = true
		}
	}

	driven := make(map[logic.ConnectorID]int)
	for i, w := range desc.Wires {
		field := fmt.Sprintf("wires[%d]", i)
		if !outputs[logic.NewConnectorID(w.From)] {
			fail(field+".from", "%q is not an output connector", w.From)
		}
		if len(w.To) == 0 {
			fail(field+".to", "a wire needs at least one destination")
		}
		for j, to := range w.To {
			id := logic.NewConnectorID(to)
			if !inputs[id] {
				fail(fmt.Sprintf("%s.to[%d]", field, j), "%q is not an input connector", to)
				continue
			}
			if prev, ok := driven[id]; ok {
				fail(fmt.Sprintf("%s.to[%d]", field, j), "%q is already driven by wires[%d]", to, prev)
				continue
			}
			driven[id] = i
		}
	}

	return errors.Join(errs...)
}
