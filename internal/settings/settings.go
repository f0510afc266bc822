// Package settings loads and saves the user preferences file,
// ~/.pcb/preferences: an INI-like format with [values]/[reals]/
// [strings]/[colors]/[lists] sections, plus one color file per named
// palette under ~/.pcb/colors/. The section layout mirrors the upstream
// editor's resource file shape (see the teacher's filesystem-loading
// conventions for the "read a small config file into a typed struct at
// startup" pattern); no third-party INI library in the retrieved pack
// covers this bespoke multi-typed-section layout, so the parser is
// hand-written rather than borrowed.
package settings

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pcb-core/pcb/internal/pcberr"
)

// Settings holds every preference the editor reads at startup.
type Settings struct {
	Values  map[string]int
	Reals   map[string]float64
	Strings map[string]string
	Colors  map[string]string // name -> "#rrggbb"
	Lists   map[string][]string
}

func New() *Settings {
	return &Settings{
		Values: map[string]int{}, Reals: map[string]float64{},
		Strings: map[string]string{}, Colors: map[string]string{},
		Lists: map[string][]string{},
	}
}

// DefaultPath returns ~/.pcb/preferences, creating ~/.pcb if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", pcberr.New(pcberr.Resource, "cannot determine home directory").Wrap(err)
	}
	dir := filepath.Join(home, ".pcb")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", pcberr.New(pcberr.Resource, "cannot create settings directory").Wrap(err)
	}
	return filepath.Join(dir, "preferences"), nil
}

// Load reads path into a fresh Settings. A missing file is not an error:
// the caller gets defaults-only Settings, matching the editor's
// first-run behavior.
func Load(path string) (*Settings, error) {
	s := New()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, pcberr.New(pcberr.Resource, "cannot open settings file").Wrap(err)
	}
	defer f.Close()

	section := ""
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, pcberr.New(pcberr.Parse, fmt.Sprintf("malformed line")).At(pcberr.Location{File: path, Line: lineNo})
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch section {
		case "values":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, pcberr.New(pcberr.Parse, "expected integer").At(pcberr.Location{File: path, Line: lineNo}).Wrap(err)
			}
			s.Values[key] = n
		case "reals":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, pcberr.New(pcberr.Parse, "expected real number").At(pcberr.Location{File: path, Line: lineNo}).Wrap(err)
			}
			s.Reals[key] = f
		case "strings":
			s.Strings[key] = value
		case "colors":
			s.Colors[key] = value
		case "lists":
			s.Lists[key] = append(s.Lists[key], strings.Split(value, ",")...)
		default:
			return nil, pcberr.New(pcberr.Parse, fmt.Sprintf("key outside any section: %q", key)).At(pcberr.Location{File: path, Line: lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pcberr.New(pcberr.Resource, "error reading settings file").Wrap(err)
	}
	return s, nil
}

// Save writes s back out in the same section layout Load reads, with
// keys sorted for a stable diff between saves.
func (s *Settings) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pcberr.New(pcberr.Resource, "cannot write settings file").Wrap(err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	writeIntSection(w, "values", s.Values)
	writeFloatSection(w, "reals", s.Reals)
	writeStringSection(w, "strings", s.Strings)
	writeStringSection(w, "colors", s.Colors)
	writeListSection(w, "lists", s.Lists)

	return w.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeIntSection(w *bufio.Writer, name string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(w, "[%s]\n", name)
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(w, "%s=%d\n", k, m[k])
	}
}

func writeFloatSection(w *bufio.Writer, name string, m map[string]float64) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(w, "[%s]\n", name)
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(w, "%s=%g\n", k, m[k])
	}
}

func writeStringSection(w *bufio.Writer, name string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(w, "[%s]\n", name)
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(w, "%s=%s\n", k, m[k])
	}
}

func writeListSection(w *bufio.Writer, name string, m map[string][]string) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(w, "[%s]\n", name)
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(w, "%s=%s\n", k, strings.Join(m[k], ","))
	}
}

// LoadColorFile reads ~/.pcb/colors/NAME, one "role=#rrggbb" assignment
// per line, into a map — the per-palette color file the [colors] section
// of preferences names by file.
func LoadColorFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pcberr.New(pcberr.Resource, "cannot open color file").Wrap(err)
	}
	defer f.Close()

	colors := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		colors[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return colors, scanner.Err()
}
