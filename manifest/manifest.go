package manifest

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/decodergen"
	"github.com/wippyai/decodergen/assembler"
	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/transpiler"
)

// Manifest describes a port table on disk.
//
//	target: v4
//	ports:
//	  2:
//	    body_file: port2.js
//	  3:
//	    body: |
//	      var vars = {};
//	      ...
//	    subroutines:
//	      - "function (v) { return v / 10; }"
type Manifest struct {
	Ports  map[uint32]Port `yaml:"ports"`
	Target string          `yaml:"target,omitempty"`
	// dir resolves relative file references.
	dir string
}

// Port is one entry of the table. Exactly one of Body and BodyFile is set.
type Port struct {
	Body            string   `yaml:"body,omitempty"`
	BodyFile        string   `yaml:"body_file,omitempty"`
	Subroutines     []string `yaml:"subroutines,omitempty"`
	SubroutineFiles []string `yaml:"subroutine_files,omitempty"`
}

// Load reads and validates the manifest at path. File references resolve
// against the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read manifest "+path, err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(data []byte, dir string) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.Load("empty manifest", nil)
		}
		return nil, errors.Load("decode manifest", err)
	}
	m.dir = dir

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Ports) == 0 {
		return errors.InvalidData(errors.PhaseLoad, []string{"ports"}, "no ports defined")
	}
	if m.Target != "" {
		if _, ok := assembler.ParseShell(m.Target); !ok {
			return errors.InvalidData(errors.PhaseLoad, []string{"target"}, "unknown target "+m.Target)
		}
	}
	for n, p := range m.Ports {
		hasBody := strings.TrimSpace(p.Body) != ""
		hasFile := p.BodyFile != ""
		switch {
		case hasBody && hasFile:
			return errors.InvalidData(errors.PhaseLoad, []string{"ports", errors.PortPath(n)}, "body and body_file are exclusive")
		case !hasBody && !hasFile:
			return errors.InvalidData(errors.PhaseLoad, []string{"ports", errors.PortPath(n)}, "body or body_file required")
		}
	}
	return nil
}

// Shell returns the manifest's target, or fallback when none is set.
func (m *Manifest) Shell(fallback assembler.Shell) assembler.Shell {
	if s, ok := assembler.ParseShell(m.Target); ok {
		return s
	}
	return fallback
}

// Table reads every referenced file and returns the port table.
func (m *Manifest) Table() (decodergen.Ports, error) {
	ports := make(decodergen.Ports, len(m.Ports))
	for n, p := range m.Ports {
		def, err := m.definition(n, p)
		if err != nil {
			return nil, err
		}
		ports[n] = def
	}
	return ports, nil
}

func (m *Manifest) definition(n uint32, p Port) (transpiler.Definition, error) {
	def := transpiler.Definition{Body: p.Body}
	if p.BodyFile != "" {
		body, err := m.read(p.BodyFile)
		if err != nil {
			return def, withPort(err, n)
		}
		def.Body = body
	}

	def.Subroutines = append(def.Subroutines, p.Subroutines...)
	for _, f := range p.SubroutineFiles {
		src, err := m.read(f)
		if err != nil {
			return def, withPort(err, n)
		}
		def.Subroutines = append(def.Subroutines, strings.TrimSpace(src))
	}
	return def, nil
}

func (m *Manifest) read(name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.New(errors.PhaseLoad, errors.KindNotFound).
			Detail("read %s", name).
			Cause(err).
			Build()
	}
	return string(data), nil
}

func withPort(err error, n uint32) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		e.Path = append([]string{"ports", errors.PortPath(n)}, e.Path...)
	}
	return err
}
