package assembler

import (
	"sort"
	"strconv"
	"strings"

	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/reader"
	"github.com/wippyai/decodergen/transpiler"
)

// Port is one transpiled port body.
type Port struct {
	Result *transpiler.Result
	Number uint32
}

// FuncName returns the name of the decode function emitted for port n.
func FuncName(n uint32) string {
	return "parsePort" + strconv.FormatUint(uint64(n), 10)
}

// Readers returns the union of the codecs every port requires, closed
// under reader.Dependencies.
func Readers(ports []Port) reader.Set {
	var set reader.Set
	for _, p := range ports {
		if p.Result == nil {
			continue
		}
		set = set.Union(p.Result.Readers)
		for _, t := range p.Result.Readers.Types() {
			set.Require(t)
		}
	}
	return set
}

// Assemble emits one self-contained decoder: the required codec functions,
// a parsePort<N>(buffer) function per port and the shell's entry point
// dispatching on fPort. Ports are emitted in ascending order regardless of
// the order given; unknown ports decode to null.
func Assemble(shell Shell, ports []Port) (string, error) {
	if !shell.Valid() {
		return "", errors.New(errors.PhaseAssemble, errors.KindUnsupported).
			Value(shell).
			Detail("unknown shell %s", shell).
			Build()
	}

	sorted := make([]Port, len(ports))
	copy(sorted, ports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	for i, p := range sorted {
		if p.Result == nil {
			return "", errors.New(errors.PhaseAssemble, errors.KindInvalidInput).
				Path(errors.PortPath(p.Number)).
				Detail("missing transpile result").
				Build()
		}
		if i > 0 && sorted[i-1].Number == p.Number {
			return "", errors.DuplicatePort(errors.PhaseAssemble, p.Number)
		}
	}

	var lines []string

	codecs, err := Codecs(Readers(sorted))
	if err != nil {
		return "", err
	}
	lines = append(lines, codecs...)

	for _, p := range sorted {
		lines = append(lines, "function "+FuncName(p.Number)+"(buffer){")
		if p.Result.Body != "" {
			lines = append(lines, p.Result.Body)
		}
		lines = append(lines, "}")
	}

	lines = append(lines, shell.open()...)
	lines = append(lines, dispatch(sorted)...)
	lines = append(lines, "}")

	return strings.Join(lines, "\n"), nil
}

// Codecs returns the source of every codec function in set, each once,
// in enumeration order.
func Codecs(set reader.Set) ([]string, error) {
	types := set.Types()
	out := make([]string, 0, len(types))
	for _, t := range types {
		src, err := reader.Source(t)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func dispatch(ports []Port) []string {
	lines := make([]string, 0, len(ports)+3)
	lines = append(lines, "switch(fPort){")
	for _, p := range ports {
		n := strconv.FormatUint(uint64(p.Number), 10)
		lines = append(lines, "case "+n+": return "+FuncName(p.Number)+"(buffer);")
	}
	lines = append(lines, "default: return null;", "}")
	return lines
}
