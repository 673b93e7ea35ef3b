package assembler

import (
	"strconv"
	"strings"
)

// Shell selects the entry-point signature wrapped around the dispatcher.
type Shell uint8

const (
	// ShellV4 exposes decodeUplink(input) reading input.fPort and input.bytes.
	ShellV4 Shell = iota + 1
	// ShellV3 exposes Decode(fPort, bytes, variables); variables is unused.
	ShellV3
)

// EntryPoint returns the name of the global function the shell declares.
func (s Shell) EntryPoint() string {
	switch s {
	case ShellV4:
		return "decodeUplink"
	case ShellV3:
		return "Decode"
	}
	return ""
}

func (s Shell) String() string {
	switch s {
	case ShellV4:
		return "v4"
	case ShellV3:
		return "v3"
	}
	return "Shell(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is a known shell.
func (s Shell) Valid() bool {
	return s == ShellV4 || s == ShellV3
}

// ParseShell maps "v3" / "v4" (case-insensitive, optional "chirpstack-"
// prefix) to a Shell.
func ParseShell(name string) (Shell, bool) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "chirpstack-")
	switch name {
	case "v4", "4":
		return ShellV4, true
	case "v3", "3":
		return ShellV3, true
	}
	return 0, false
}

// open returns the lines that start the entry point and bind fPort and buffer.
func (s Shell) open() []string {
	switch s {
	case ShellV4:
		return []string{
			"function decodeUplink (input) {",
			"var fPort = input.fPort;",
			"var buffer = input.bytes;",
		}
	case ShellV3:
		return []string{"function Decode (fPort, buffer, variables) {"}
	}
	return nil
}
