package errors

import "testing"

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "with location",
			err:  NewSyntaxError("unexpected character '&'", 3, 7),
			want: "SyntaxError: unexpected character '&' at L3:C7",
		},
		{
			name: "compile error",
			err:  NewCompileError("undeclared variable \"x\"", 1, 5),
			want: "CompileError: undeclared variable \"x\" at L1:C5",
		},
		{
			name: "runtime error has no location",
			err:  NewRuntimeError("division by zero"),
			want: "RuntimeError: division by zero",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
