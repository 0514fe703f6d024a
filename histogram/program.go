// Copyright 2025 Sonic Labs
// This file is part of Aida Testing Infrastructure for Sonic
//
// Aida is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Aida is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Aida. If not, see <http://www.gnu.org/licenses/>.

package histogram

import (
	"bufio"
	"bytes"
	"debug/elf"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

// Format identifies how a program file is read.
type Format int

const (
	FormatListing Format = iota // "opcode [count]" per line
	FormatLLVM                  // textual LLVM IR
	FormatELF                   // x86-64 or arm64 executable
)

func (f Format) String() string {
	switch f {
	case FormatListing:
		return "listing"
	case FormatLLVM:
		return "llvm-ir"
	case FormatELF:
		return "elf"
	default:
		return "unknown"
	}
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Detect sniffs the format of the given file.
func Detect(path string) (Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot open program %s", path)
	}
	defer file.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, errors.Wrapf(err, "cannot read program %s", path)
	}
	if n == len(elfMagic) && bytes.Equal(head, elfMagic) {
		return FormatELF, nil
	}
	if filepath.Ext(path) == ".ll" {
		return FormatLLVM, nil
	}
	return FormatListing, nil
}

// Load builds the opcode histogram of the program at path.
func Load(path string) (Histogram, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatELF:
		return loadELF(path)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open program %s", path)
		}
		defer file.Close()
		if format == FormatLLVM {
			return ReadLLVM(file)
		}
		return ReadListing(file)
	}
}

// ReadListing parses lines of the form "opcode [count]". Blank lines and
// text after '#' are ignored.
func ReadListing(r io.Reader) (Histogram, error) {
	h := make(Histogram)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		switch len(fields) {
		case 0:
			continue
		case 1:
			h.Add(fields[0])
		case 2:
			n, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || !(n > 0) || math.IsInf(n, 0) {
				return nil, errors.Newf("line %d: invalid count %q", line, fields[1])
			}
			h.AddN(fields[0], n)
		default:
			return nil, errors.Newf("line %d: expected \"opcode [count]\", got %q", line, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read listing")
	}
	return h, nil
}

// ReadLLVM counts the instructions of every function body in textual LLVM IR.
func ReadLLVM(r io.Reader) (Histogram, error) {
	h := make(Histogram)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	inBody := false
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(text, ';'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}
		if !inBody {
			if strings.HasPrefix(text, "define ") && strings.HasSuffix(text, "{") {
				inBody = true
			}
			continue
		}
		if text == "}" {
			inBody = false
			continue
		}
		if op := llvmOpcode(text); op != "" {
			h.Add(op)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read llvm ir")
	}
	return h, nil
}

// llvmOpcode extracts the opcode of one body line, "" for labels.
func llvmOpcode(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasSuffix(fields[0], ":") {
		return ""
	}
	if strings.HasPrefix(fields[0], "%") {
		// "%x = opcode ..."
		if len(fields) < 3 || fields[1] != "=" {
			return ""
		}
		fields = fields[2:]
	}
	switch fields[0] {
	case "tail", "musttail", "notail":
		if len(fields) > 1 {
			return fields[1]
		}
	}
	return fields[0]
}

func loadELF(path string) (Histogram, error) {
	file, err := elf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open elf %s", path)
	}
	defer file.Close()

	var decode func([]byte) (string, int)
	switch file.Machine {
	case elf.EM_X86_64:
		decode = decodeX86
	case elf.EM_AARCH64:
		decode = decodeArm64
	default:
		return nil, errors.Newf("unsupported elf machine %v", file.Machine)
	}

	h := make(Histogram)
	for _, section := range file.Sections {
		if section.Type != elf.SHT_PROGBITS || section.Flags&elf.SHF_EXECINSTR == 0 {
			continue
		}
		data, err := section.Data()
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read section %s", section.Name)
		}
		DecodeInto(h, data, decode)
	}
	return h, nil
}

// DecodeInto disassembles code with decode and counts each opcode in h.
// Undecodable bytes are skipped.
func DecodeInto(h Histogram, code []byte, decode func([]byte) (string, int)) {
	for off := 0; off < len(code); {
		op, size := decode(code[off:])
		if op != "" {
			h.Add(op)
		}
		off += max(size, 1)
	}
}

func decodeX86(code []byte) (string, int) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return "", 1
	}
	return strings.ToLower(inst.Op.String()), inst.Len
}

func decodeArm64(code []byte) (string, int) {
	if len(code) < 4 {
		return "", len(code)
	}
	inst, err := arm64asm.Decode(code[:4])
	if err != nil {
		return "", 4
	}
	return strings.ToLower(inst.Op.String()), 4
}
