// Package staticsrc owns the read-only fallback sources consulted when
// the property service is unreachable: the system build property file
// and the kernel boot command line. Both are best-effort; an unreadable
// source is simply a miss.
package staticsrc

import (
	"bufio"
	"os"
	"strings"
)

// File looks keys up in a key=value property file, one entry per line.
type File struct {
	Path string
}

// Lookup scans line by line and returns the first exact key match.
// Trailing CR is stripped, only the first '=' on a line splits key
// from value, and the scan stops on the first hit.
func (f File) Lookup(key string) (string, bool) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return "", false
	}
	defer fh.Close()

	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if name == key {
			return value, true
		}
	}
	return "", false
}
