package vm

import (
	"bytes"
	"strings"
	"testing"

	"tern/internal/bytecode"
)

func ins(op bytecode.Op, operand float64) bytecode.Instruction {
	return bytecode.Instruction{Op: op, Operand: operand}
}

// Test basic arithmetic operations
func TestArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		code     []bytecode.Instruction
		expected float64
	}{
		{
			name: "addition",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 10),
				ins(bytecode.OpPushInt, 20),
				ins(bytecode.OpAdd, 0),
				ins(bytecode.OpHalt, 0),
			},
			expected: 30,
		},
		{
			name: "subtraction",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 50),
				ins(bytecode.OpPushInt, 20),
				ins(bytecode.OpSub, 0),
				ins(bytecode.OpHalt, 0),
			},
			expected: 30,
		},
		{
			name: "multiplication",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 5),
				ins(bytecode.OpPushInt, 6),
				ins(bytecode.OpMul, 0),
				ins(bytecode.OpHalt, 0),
			},
			expected: 30,
		},
		{
			name: "division",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 60),
				ins(bytecode.OpPushInt, 2),
				ins(bytecode.OpDiv, 0),
				ins(bytecode.OpHalt, 0),
			},
			expected: 30,
		},
		{
			name: "float arithmetic",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushFloat, 1.5),
				ins(bytecode.OpPushFloat, 2.25),
				ins(bytecode.OpAdd, 0),
				ins(bytecode.OpHalt, 0),
			},
			expected: 3.75,
		},
		{
			name: "negation",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 42),
				ins(bytecode.OpNegate, 0),
				ins(bytecode.OpHalt, 0),
			},
			expected: -42,
		},
		{
			name: "operand order",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 7),
				ins(bytecode.OpPushInt, 3),
				ins(bytecode.OpSub, 0),
				ins(bytecode.OpHalt, 0),
			},
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Run(&bytecode.Program{Code: tt.code})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %g, got %g", tt.expected, result)
			}
		})
	}
}

// Test comparison operations
func TestComparisons(t *testing.T) {
	tests := []struct {
		name     string
		op       bytecode.Op
		left     float64
		right    float64
		expected float64
	}{
		{"greater true", bytecode.OpGreater, 42, 24, 1},
		{"greater false", bytecode.OpGreater, 24, 42, 0},
		{"less true", bytecode.OpLess, 24, 42, 1},
		{"greater equal on equal", bytecode.OpGreaterEqual, 7, 7, 1},
		{"less equal false", bytecode.OpLessEqual, 8, 7, 0},
		{"equal true", bytecode.OpEqual, 42, 42, 1},
		{"equal false", bytecode.OpEqual, 42, 24, 0},
		{"not equal", bytecode.OpNotEqual, 42, 24, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := &bytecode.Program{Code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, tt.left),
				ins(bytecode.OpPushInt, tt.right),
				ins(tt.op, 0),
				ins(bytecode.OpHalt, 0),
			}}
			result, err := New().Run(prog)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %g, got %g", tt.expected, result)
			}
		})
	}
}

func TestNot(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{"not zero", 0, 1},
		{"not one", 1, 0},
		{"not other nonzero", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := &bytecode.Program{Code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, tt.in),
				ins(bytecode.OpNot, 0),
				ins(bytecode.OpHalt, 0),
			}}
			result, err := New().Run(prog)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %g, got %g", tt.expected, result)
			}
		})
	}
}

// Test memory operations
func TestStoreLoad(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		prog := &bytecode.Program{Code: []bytecode.Instruction{
			ins(bytecode.OpPushFloat, 3.5), // value
			ins(bytecode.OpPushInt, 0),     // address
			ins(bytecode.OpStore, 0),
			ins(bytecode.OpPop, 0), // STORE pushes the value back
			ins(bytecode.OpPushInt, 0),
			ins(bytecode.OpLoad, 0),
			ins(bytecode.OpHalt, 0),
		}}
		result, err := New().Run(prog)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != 3.5 {
			t.Errorf("expected 3.5, got %g", result)
		}
	})

	t.Run("store grows memory", func(t *testing.T) {
		prog := &bytecode.Program{Code: []bytecode.Instruction{
			ins(bytecode.OpPushInt, 9),
			ins(bytecode.OpPushInt, 5), // address far past current size
			ins(bytecode.OpStore, 0),
			ins(bytecode.OpPop, 0),
			ins(bytecode.OpPushInt, 3), // untouched slot reads as zero
			ins(bytecode.OpLoad, 0),
			ins(bytecode.OpHalt, 0),
		}}
		result, err := New().Run(prog)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != 0 {
			t.Errorf("expected 0, got %g", result)
		}
	})

	t.Run("load out of range", func(t *testing.T) {
		prog := &bytecode.Program{Code: []bytecode.Instruction{
			ins(bytecode.OpPushInt, 0),
			ins(bytecode.OpLoad, 0),
			ins(bytecode.OpHalt, 0),
		}}
		if _, err := New().Run(prog); err == nil {
			t.Fatal("expected error for load from unwritten memory")
		}
	})
}

// Test control flow
func TestJumps(t *testing.T) {
	t.Run("jump if false taken on exact zero", func(t *testing.T) {
		prog := &bytecode.Program{Code: []bytecode.Instruction{
			ins(bytecode.OpPushInt, 0),
			ins(bytecode.OpJumpIfFalse, 4),
			ins(bytecode.OpPushInt, 10), // skipped
			ins(bytecode.OpJump, 5),
			ins(bytecode.OpPushInt, 20),
			ins(bytecode.OpHalt, 0),
		}}
		result, err := New().Run(prog)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != 20 {
			t.Errorf("expected 20, got %g", result)
		}
	})

	t.Run("jump if false not taken on nonzero", func(t *testing.T) {
		prog := &bytecode.Program{Code: []bytecode.Instruction{
			ins(bytecode.OpPushFloat, 0.5),
			ins(bytecode.OpJumpIfFalse, 4),
			ins(bytecode.OpPushInt, 10),
			ins(bytecode.OpJump, 5),
			ins(bytecode.OpPushInt, 20),
			ins(bytecode.OpHalt, 0),
		}}
		result, err := New().Run(prog)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != 10 {
			t.Errorf("expected 10, got %g", result)
		}
	})

	t.Run("jump if true", func(t *testing.T) {
		prog := &bytecode.Program{Code: []bytecode.Instruction{
			ins(bytecode.OpPushInt, 1),
			ins(bytecode.OpJumpIfTrue, 4),
			ins(bytecode.OpPushInt, 10),
			ins(bytecode.OpJump, 5),
			ins(bytecode.OpPushInt, 20),
			ins(bytecode.OpHalt, 0),
		}}
		result, err := New().Run(prog)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != 20 {
			t.Errorf("expected 20, got %g", result)
		}
	})
}

// Test string operations
func TestStrings(t *testing.T) {
	t.Run("concatenation appends to pool", func(t *testing.T) {
		var out bytes.Buffer
		prog := &bytecode.Program{
			Code: []bytecode.Instruction{
				ins(bytecode.OpPushString, 0),
				ins(bytecode.OpPushString, 1),
				ins(bytecode.OpConcatString, 0),
				ins(bytecode.OpPrintString, 0),
				ins(bytecode.OpHalt, 0),
			},
			Strings: []string{"Hello, ", "World"},
		}
		if _, err := NewWithOutput(&out).Run(prog); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := out.String(); got != "Hello, World\n" {
			t.Errorf("expected %q, got %q", "Hello, World\n", got)
		}
	})

	t.Run("run does not mutate program pool", func(t *testing.T) {
		prog := &bytecode.Program{
			Code: []bytecode.Instruction{
				ins(bytecode.OpPushString, 0),
				ins(bytecode.OpPushString, 1),
				ins(bytecode.OpConcatString, 0),
				ins(bytecode.OpHalt, 0),
			},
			Strings: []string{"a", "b"},
		}
		if _, err := NewWithOutput(&bytes.Buffer{}).Run(prog); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(prog.Strings) != 2 {
			t.Errorf("program pool grew to %d entries", len(prog.Strings))
		}
	})

	t.Run("invalid pool index", func(t *testing.T) {
		prog := &bytecode.Program{Code: []bytecode.Instruction{
			ins(bytecode.OpPushInt, 99),
			ins(bytecode.OpPrintString, 0),
			ins(bytecode.OpHalt, 0),
		}}
		if _, err := NewWithOutput(&bytes.Buffer{}).Run(prog); err == nil {
			t.Fatal("expected error for invalid string pool index")
		}
	})
}

// Test print rendering
func TestPrintValue(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"zero prints false", 0, "false\n"},
		{"one prints true", 1, "true\n"},
		{"integer", 5, "5\n"},
		{"float", 2.5, "2.5\n"},
		{"negative", -3, "-3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			prog := &bytecode.Program{Code: []bytecode.Instruction{
				ins(bytecode.OpPushFloat, tt.value),
				ins(bytecode.OpPrintValue, 0),
				ins(bytecode.OpHalt, 0),
			}}
			if _, err := NewWithOutput(&out).Run(prog); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, out.String())
			}
		})
	}
}

// Test fatal runtime errors
func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    []bytecode.Instruction
		wantMsg string
	}{
		{
			name: "division by zero",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 1),
				ins(bytecode.OpPushInt, 0),
				ins(bytecode.OpDiv, 0),
				ins(bytecode.OpHalt, 0),
			},
			wantMsg: "division by zero",
		},
		{
			name: "stack underflow",
			code: []bytecode.Instruction{
				ins(bytecode.OpAdd, 0),
				ins(bytecode.OpHalt, 0),
			},
			wantMsg: "stack underflow",
		},
		{
			name: "reserved AND opcode",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 1),
				ins(bytecode.OpPushInt, 1),
				ins(bytecode.OpAnd, 0),
				ins(bytecode.OpHalt, 0),
			},
			wantMsg: "reserved opcode",
		},
		{
			name: "reserved OR opcode",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 1),
				ins(bytecode.OpPushInt, 1),
				ins(bytecode.OpOr, 0),
				ins(bytecode.OpHalt, 0),
			},
			wantMsg: "reserved opcode",
		},
		{
			name: "missing halt",
			code: []bytecode.Instruction{
				ins(bytecode.OpPushInt, 1),
			},
			wantMsg: "did not halt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Run(&bytecode.Program{Code: tt.code})
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestHalt(t *testing.T) {
	t.Run("empty stack returns zero", func(t *testing.T) {
		prog := &bytecode.Program{Code: []bytecode.Instruction{
			ins(bytecode.OpHalt, 0),
		}}
		result, err := New().Run(prog)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != 0 {
			t.Errorf("expected 0, got %g", result)
		}
	})
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "false"},
		{1, "true"},
		{5, "5"},
		{2.5, "2.5"},
		{-1, "-1"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.expected {
			t.Errorf("FormatValue(%g) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func BenchmarkArithmetic(b *testing.B) {
	prog := &bytecode.Program{Code: []bytecode.Instruction{
		ins(bytecode.OpPushInt, 10),
		ins(bytecode.OpPushInt, 20),
		ins(bytecode.OpAdd, 0),
		ins(bytecode.OpPushInt, 3),
		ins(bytecode.OpMul, 0),
		ins(bytecode.OpHalt, 0),
	}}

	machine := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		machine.Run(prog)
	}
}
