package isa

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Hart describes the hart advertised by a riscv-config ISA spec: the
// register widths it supports and its ISA string (e.g. "RV32IMCZicsr").
type Hart struct {
	SupportedXlen []int
	ISA           string
}

type specFile struct {
	Hart0 *rawHart `yaml:"hart0"`
}

type rawHart struct {
	SupportedXlen []int  `yaml:"supported_xlen"`
	ISA           string `yaml:"ISA"`
}

// Load reads the hart0 node from a riscv-config ISA spec file.
func Load(path string) (*Hart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read isa spec")
	}
	hart, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "isa spec %s", path)
	}
	return hart, nil
}

// Parse decodes a riscv-config ISA spec document. A hart0 node is
// required; the contents are taken as-is and never second-guessed, so a
// malformed ISA string surfaces later as a failing compile or simulator
// invocation rather than an error here.
func Parse(data []byte) (*Hart, error) {
	var file specFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse isa spec")
	}
	if file.Hart0 == nil {
		return nil, errors.New("isa spec has no hart0 node")
	}
	return &Hart{
		SupportedXlen: file.Hart0.SupportedXlen,
		ISA:           file.Hart0.ISA,
	}, nil
}

// XLEN returns 64 when the hart supports 64-bit operation, else 32.
func (h *Hart) XLEN() int {
	for _, xlen := range h.SupportedXlen {
		if xlen == 64 {
			return 64
		}
	}
	return 32
}

// ABI returns the gcc -mabi value matching the hart's width: lp64 for
// 64-bit harts, ilp32 otherwise.
func (h *Hart) ABI() string {
	if h.XLEN() == 64 {
		return "lp64"
	}
	return "ilp32"
}

// Has reports whether the ISA string advertises the named extension.
func (h *Hart) Has(ext string) bool {
	return strings.Contains(h.ISA, ext)
}

// baseExtensions is the canonical single-letter ordering. Simulators and
// some toolchains parse the march string positionally, so emission order
// is fixed here, not taken from the input YAML.
var baseExtensions = []string{"I", "M", "A", "F", "D", "C"}

// subExtensions are the multi-letter extensions recognised by the spike
// flow, in emission order.
var subExtensions = []string{"Zicsr", "Zifencei", "Zba", "Zbb", "Zbc", "Zbs"}

// Name derives the canonical ISA name from the hart's width and base
// extensions, e.g. "rv64imafdc".
func (h *Hart) Name() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rv%d", h.XLEN())
	for _, ext := range baseExtensions {
		if h.Has(ext) {
			b.WriteString(strings.ToLower(ext))
		}
	}
	return b.String()
}

// NameWithSub extends Name with any recognised sub-extensions, each
// prefixed with an underscore, e.g. "rv32imc_zicsr_zifencei".
func (h *Hart) NameWithSub() string {
	var b strings.Builder
	b.WriteString(h.Name())
	for _, ext := range subExtensions {
		if h.Has(ext) {
			b.WriteByte('_')
			b.WriteString(strings.ToLower(ext))
		}
	}
	return b.String()
}
