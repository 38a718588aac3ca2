// Package bundle reads and writes compiled program bundles (.tnb
// files). A bundle is a CBOR document carrying the instruction
// sequence and the compile-time string pool, prefixed by a magic
// string and a format version so a stale or foreign file fails fast
// instead of executing garbage.
package bundle

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"tern/internal/bytecode"
)

const (
	Magic   = "TERN"
	Version = 1

	// Ext is the conventional file extension for bundles.
	Ext = ".tnb"
)

var (
	ErrInvalidMagic    = fmt.Errorf("bundle: invalid magic")
	ErrVersionMismatch = fmt.Errorf("bundle: unsupported format version")
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bundle: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type wireInstruction struct {
	Op      byte    `cbor:"1,keyasint"`
	Operand float64 `cbor:"2,keyasint"`
}

type wireBundle struct {
	Magic   string            `cbor:"1,keyasint"`
	Version int               `cbor:"2,keyasint"`
	Code    []wireInstruction `cbor:"3,keyasint"`
	Strings []string          `cbor:"4,keyasint"`
}

// Marshal serializes a validated program to canonical CBOR bytes.
func Marshal(p *bytecode.Program) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("bundle: refusing to write invalid program: %w", err)
	}
	w := wireBundle{
		Magic:   Magic,
		Version: Version,
		Code:    make([]wireInstruction, len(p.Code)),
		Strings: p.Strings,
	}
	for i, in := range p.Code {
		w.Code[i] = wireInstruction{Op: byte(in.Op), Operand: in.Operand}
	}
	return cborEncMode.Marshal(&w)
}

// Unmarshal deserializes and validates a program from CBOR bytes.
func Unmarshal(data []byte) (*bytecode.Program, error) {
	var w wireBundle
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bundle: unmarshal: %w", err)
	}
	if w.Magic != Magic {
		return nil, ErrInvalidMagic
	}
	if w.Version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, w.Version, Version)
	}
	p := &bytecode.Program{
		Code:    make([]bytecode.Instruction, len(w.Code)),
		Strings: w.Strings,
	}
	for i, in := range w.Code {
		p.Code[i] = bytecode.Instruction{Op: bytecode.Op(in.Op), Operand: in.Operand}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("bundle: invalid program: %w", err)
	}
	return p, nil
}

// WriteFile writes a program bundle to path.
func WriteFile(path string, p *bytecode.Program) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("bundle: write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and validates a program bundle from path.
func ReadFile(path string) (*bytecode.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: read %s: %w", path, err)
	}
	return Unmarshal(data)
}
