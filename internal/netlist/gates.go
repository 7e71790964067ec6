package netlist

import "github.com/roach88/logicsim/internal/logic"

// eval computes a gate's output from its input states.
//
// Non-binary inputs follow the usual four-valued rules: a controlling input
// (Off for AND, On for OR) decides the result on its own; otherwise any
// Oscillating input makes the output Oscillating, and any Unknown input
// makes it Unknown.
func eval(kind Kind, in []logic.State) logic.State {
	switch kind {
	case KindBuf:
		return in[0]
	case KindNot:
		return not(in[0])
	case KindAnd:
		return and(in)
	case KindNand:
		return not(and(in))
	case KindOr:
		return or(in)
	case KindNor:
		return not(or(in))
	case KindXor:
		return xor(in)
	case KindXnor:
		return not(xor(in))
	default:
		return logic.Unknown
	}
}

func not(s logic.State) logic.State {
	switch s {
	case logic.On:
		return logic.Off
	case logic.Off:
		return logic.On
	default:
		return s
	}
}

// dominant returns the value an undecided gate takes: Oscillating beats
// Unknown, and ok is false when every input was binary.
func dominant(in []logic.State) (s logic.State, ok bool) {
	s = logic.Unknown
	for _, v := range in {
		switch v {
		case logic.Oscillating:
			return logic.Oscillating, true
		case logic.Unknown:
			ok = true
		}
	}
	return s, ok
}

func and(in []logic.State) logic.State {
	for _, v := range in {
		if v == logic.Off {
			return logic.Off
		}
	}
	if s, ok := dominant(in); ok {
		return s
	}
	return logic.On
}

func or(in []logic.State) logic.State {
	for _, v := range in {
		if v == logic.On {
			return logic.On
		}
	}
	if s, ok := dominant(in); ok {
		return s
	}
	return logic.Off
}

func xor(in []logic.State) logic.State {
	if s, ok := dominant(in); ok {
		return s
	}
	out := logic.Off
	for _, v := range in {
		if v == logic.On {
			out = not(out)
		}
	}
	return out
}
