package staticsrc

import (
	"io"
	"os"
	"strings"

	"github.com/danmuck/sysprops/internal/propmsg"
)

// cmdlineReadLimit bounds how much of the pseudo-file is read; the
// kernel command line that matters fits well inside it.
const cmdlineReadLimit = 1023

const bootPrefix = "androidboot."

// Cmdline looks keys up in the kernel boot command line. Init publishes
// androidboot.X=V tokens as ro.X properties; this mirrors that mapping
// for systems where init never ran.
type Cmdline struct {
	Path string
}

// Lookup tokenizes the command line on spaces and returns the value of
// the first androidboot token whose remapped ro.<suffix> name matches
// key exactly. The remapped name is capped at the property name bound
// before comparing, like every other boundary-crossing copy.
func (c Cmdline) Lookup(key string) (string, bool) {
	fh, err := os.Open(c.Path)
	if err != nil {
		return "", false
	}
	defer fh.Close()

	data, err := io.ReadAll(io.LimitReader(fh, cmdlineReadLimit))
	if err != nil {
		return "", false
	}

	line := strings.TrimSuffix(string(data), "\n")
	for _, tok := range strings.Fields(line) {
		name, value, ok := strings.Cut(tok, "=")
		if !ok || name == "" {
			continue
		}
		suffix, found := strings.CutPrefix(name, bootPrefix)
		if !found || suffix == "" {
			continue
		}
		prop := "ro." + suffix
		if len(prop) >= propmsg.PropNameMax {
			prop = prop[:propmsg.PropNameMax-1]
		}
		if prop == key {
			return value, true
		}
	}
	return "", false
}
