package vm

import (
	"encoding/binary"
	"fmt"
)

// OpCode tags one register-machine instruction (spec §4.5). Grounded on
// original_source/src/vm.rs's OpCode enum, collapsed from its four
// register/constant operand-addressing variants (RR/RC/CR/CC) down to
// register-only operands: a compiler targeting this instruction set
// first emits LoadConstant to materialize a constant into a register,
// then a register-only arithmetic/comparison opcode. This keeps the
// opcode table a manageable size while still exercising every operation
// spec §4.5 names; recorded as a resolved Open Question in DESIGN.md.
// Instruction encoding itself follows the teacher's
// compiler/code.go OpCodeDefinition/MakeInstruction Big-Endian pattern,
// generalized to multi-operand, variable-width instructions.
type OpCode byte

const (
	Move OpCode = iota
	LoadConstant
	LoadBool
	LoadNil
	NewTable
	GetTable
	SetTable
	GetUpTable
	SetUpTable
	GetUpValue
	SetUpValue
	Call
	TailCall
	Return
	VarArgs
	Jump
	Test
	TestSet
	Closure
	NumericForPrep
	NumericForLoop
	GenericForCall
	GenericForLoop
	Self
	Concat
	Length
	Not
	Minus
	BitNot
	Add
	Sub
	Mul
	Div
	IDiv
	Mod
	Pow
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Eq
	Less
	LessEq
)

// OpCodeDefinition names an opcode and the byte width of each of its
// operands, in emission order (teacher's compiler/code.go shape).
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

// operand widths: 1 means a register/small-count/flag byte, 2 means a
// Big-Endian uint16 (constant index, prototype index, signed jump
// offset stored as uint16 and sign-extended by the reader).
var definitions = map[OpCode]*OpCodeDefinition{
	Move:           {"MOVE", []int{1, 1}},
	LoadConstant:   {"LOADK", []int{1, 2}},
	LoadBool:       {"LOADBOOL", []int{1, 1}},
	LoadNil:        {"LOADNIL", []int{1, 1}},
	NewTable:       {"NEWTABLE", []int{1}},
	GetTable:       {"GETTABLE", []int{1, 1, 1}},
	SetTable:       {"SETTABLE", []int{1, 1, 1}},
	GetUpTable:     {"GETUPTABLE", []int{1, 1, 1}},
	SetUpTable:     {"SETUPTABLE", []int{1, 1, 1}},
	GetUpValue:     {"GETUPVAL", []int{1, 1}},
	SetUpValue:     {"SETUPVAL", []int{1, 1}},
	Call:           {"CALL", []int{1, 1, 1}},
	TailCall:       {"TAILCALL", []int{1, 1}},
	Return:         {"RETURN", []int{1, 1}},
	VarArgs:        {"VARARGS", []int{1, 1}},
	Jump:           {"JMP", []int{2}},
	Test:           {"TEST", []int{1, 1}},
	TestSet:        {"TESTSET", []int{1, 1, 1}},
	Closure:        {"CLOSURE", []int{1, 2}},
	NumericForPrep: {"FORPREP", []int{1, 2}},
	NumericForLoop: {"FORLOOP", []int{1, 2}},
	GenericForCall: {"TFORCALL", []int{1, 1}},
	GenericForLoop: {"TFORLOOP", []int{1, 2}},
	Self:           {"SELF", []int{1, 1, 1}},
	Concat:         {"CONCAT", []int{1, 1, 1}},
	Length:         {"LEN", []int{1, 1}},
	Not:            {"NOT", []int{1, 1}},
	Minus:          {"UNM", []int{1, 1}},
	BitNot:         {"BNOT", []int{1, 1}},
	Add:            {"ADD", []int{1, 1, 1}},
	Sub:            {"SUB", []int{1, 1, 1}},
	Mul:            {"MUL", []int{1, 1, 1}},
	Div:            {"DIV", []int{1, 1, 1}},
	IDiv:           {"IDIV", []int{1, 1, 1}},
	Mod:            {"MOD", []int{1, 1, 1}},
	Pow:            {"POW", []int{1, 1, 1}},
	BitAnd:         {"BAND", []int{1, 1, 1}},
	BitOr:          {"BOR", []int{1, 1, 1}},
	BitXor:         {"BXOR", []int{1, 1, 1}},
	Shl:            {"SHL", []int{1, 1, 1}},
	Shr:            {"SHR", []int{1, 1, 1}},
	Eq:             {"EQ", []int{1, 1, 1}},
	Less:           {"LT", []int{1, 1, 1}},
	LessEq:         {"LE", []int{1, 1, 1}},
}

func Get(op OpCode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// MakeInstruction encodes op and its operands Big-Endian into a fresh
// byte slice, the opcode byte first (teacher's compiler/code.go
// MakeInstruction, generalized past its single uint16-operand case).
func MakeInstruction(op OpCode, operands ...int) []byte {
	def, err := Get(op)
	if err != nil {
		return []byte{}
	}
	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instr := make([]byte, length)
	instr[0] = byte(op)
	offset := 1
	for i, o := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 1:
			instr[offset] = byte(o)
		case 2:
			binary.BigEndian.PutUint16(instr[offset:], uint16(o))
		}
		offset += width
	}
	return instr
}

// ReadOperands decodes the operands of the instruction at code[pc]
// (whose opcode byte has already been consumed by the caller), returning
// them widened to int and the number of bytes consumed.
func ReadOperands(def *OpCodeDefinition, code []byte, pc int) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0
	for i, w := range def.OperandWidths {
		switch w {
		case 1:
			operands[i] = int(code[pc+offset])
		case 2:
			operands[i] = int(binary.BigEndian.Uint16(code[pc+offset:]))
		}
		offset += w
	}
	return operands, offset
}

// signed16 reinterprets a Big-Endian uint16 jump operand as a signed
// displacement, so Jump/ForLoop/ForPrep/TForLoop can branch backward.
func signed16(u int) int32 { return int32(int16(uint16(u))) }

// CountAll is the nargs/nresults/want byte value a compiler emits for
// Call/TailCall/Return/VarArgs when it means "every value available"
// (the dynamic count a preceding multi-result Call or VarArgs left at
// frame.Top), rather than a literal count. Operands in these opcodes are
// single unsigned bytes, so the -1 sentinel argCount/ret/runHost use
// internally cannot survive a decode round-trip; decodeCount maps this
// reserved byte back to -1 at the point bytecode is read.
const CountAll = 255

func decodeCount(b int) int {
	if b == CountAll {
		return -1
	}
	return b
}
