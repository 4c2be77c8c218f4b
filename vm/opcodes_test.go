package vm

import (
	"reflect"
	"testing"
)

func TestMakeAndReadOperandsRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		op       OpCode
		operands []int
	}{
		{"MOVE", Move, []int{3, 5}},
		{"LOADK 2-byte operand", LoadConstant, []int{1, 300}},
		{"JMP", Jump, []int{12345}},
		{"ADD 3 registers", Add, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instr := MakeInstruction(tt.op, tt.operands...)
			if OpCode(instr[0]) != tt.op {
				t.Fatalf("opcode byte = %d, want %d", instr[0], tt.op)
			}
			def, err := Get(tt.op)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			got, n := ReadOperands(def, instr, 1)
			if !reflect.DeepEqual(got, tt.operands) {
				t.Errorf("ReadOperands = %v, want %v", got, tt.operands)
			}
			if n != len(instr)-1 {
				t.Errorf("consumed %d bytes, want %d", n, len(instr)-1)
			}
		})
	}
}

func TestSigned16RoundTripsNegativeDisplacement(t *testing.T) {
	instr := MakeInstruction(Jump, -10)
	def, _ := Get(Jump)
	operands, _ := ReadOperands(def, instr, 1)
	if got := signed16(operands[0]); got != -10 {
		t.Errorf("signed16 = %d, want -10", got)
	}
}

func TestDecodeCountMapsSentinelToMinusOne(t *testing.T) {
	if got := decodeCount(CountAll); got != -1 {
		t.Errorf("decodeCount(CountAll) = %d, want -1", got)
	}
	if got := decodeCount(3); got != 3 {
		t.Errorf("decodeCount(3) = %d, want 3", got)
	}
}

func TestGetUnknownOpcodeErrors(t *testing.T) {
	if _, err := Get(OpCode(255)); err == nil {
		t.Fatal("expected error for undefined opcode")
	}
}
