package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/logicsim/internal/logic"
)

const (
	unk = logic.Unknown
	lo  = logic.Off
	hi  = logic.On
	osc = logic.Oscillating
)

func TestEval_TruthTables(t *testing.T) {
	tests := []struct {
		kind Kind
		in   []logic.State
		want logic.State
	}{
		{KindBuf, []logic.State{hi}, hi},
		{KindNot, []logic.State{hi}, lo},
		{KindNot, []logic.State{lo}, hi},
		{KindAnd, []logic.State{hi, hi}, hi},
		{KindAnd, []logic.State{hi, lo}, lo},
		{KindOr, []logic.State{lo, lo}, lo},
		{KindOr, []logic.State{lo, hi}, hi},
		{KindNand, []logic.State{hi, hi}, lo},
		{KindNor, []logic.State{lo, lo}, hi},
		{KindXor, []logic.State{hi, lo}, hi},
		{KindXor, []logic.State{hi, hi}, lo},
		{KindXor, []logic.State{hi, hi, hi}, hi},
		{KindXnor, []logic.State{hi, lo}, lo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, eval(tt.kind, tt.in), "%s%v", tt.kind, tt.in)
	}
}

func TestEval_NonBinaryInputs(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   []logic.State
		want logic.State
	}{
		{"and controlled by off", KindAnd, []logic.State{lo, unk}, lo},
		{"and controlled despite oscillation", KindAnd, []logic.State{osc, lo}, lo},
		{"and undecided", KindAnd, []logic.State{hi, unk}, unk},
		{"and oscillating beats unknown", KindAnd, []logic.State{unk, osc}, osc},
		{"or controlled by on", KindOr, []logic.State{unk, hi}, hi},
		{"or undecided", KindOr, []logic.State{lo, unk}, unk},
		{"nor of oscillating", KindNor, []logic.State{lo, osc}, osc},
		{"xor never controlled", KindXor, []logic.State{hi, unk}, unk},
		{"xor oscillating", KindXor, []logic.State{osc, unk}, osc},
		{"not unknown", KindNot, []logic.State{unk}, unk},
		{"not oscillating", KindNot, []logic.State{osc}, osc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(tt.kind, tt.in))
		})
	}
}
