// Package lang holds the per-language invocation knowledge: entry file
// naming, run command and syntax-check command. Adding a language means
// registering one more Runner here; nothing else in the engine changes.
package lang

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrUnsupported marks a caller-input error: the requested language is not
// in the supported set.
var ErrUnsupported = errors.New("unsupported language")

// Runner describes how to invoke one language's interpreter.
type Runner struct {
	Name      string
	Bin       string
	EntryFile string
	// runArgs and checkArgs are inserted between Bin and the entry path.
	runArgs   []string
	checkArgs []string
}

// RunCommand builds the argv that executes entryPath.
func (r Runner) RunCommand(entryPath string) []string {
	argv := append([]string{r.Bin}, r.runArgs...)
	return append(argv, entryPath)
}

// CheckCommand builds the argv that parses entryPath without running it.
func (r Runner) CheckCommand(entryPath string) []string {
	argv := append([]string{r.Bin}, r.checkArgs...)
	return append(argv, entryPath)
}

// Registry is the closed set of supported languages.
type Registry struct {
	runners map[string]Runner
}

// NewRegistry builds the default registry. Empty binary paths fall back to
// the interpreters on PATH.
func NewRegistry(pythonBin, nodeBin string) *Registry {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	if nodeBin == "" {
		nodeBin = "node"
	}
	return &Registry{runners: map[string]Runner{
		"python": {
			Name:      "python",
			Bin:       pythonBin,
			EntryFile: "main.py",
			checkArgs: []string{"-m", "py_compile"},
		},
		"javascript": {
			Name:      "javascript",
			Bin:       nodeBin,
			EntryFile: "main.js",
			checkArgs: []string{"--check"},
		},
	}}
}

func (g *Registry) Get(language string) (Runner, error) {
	r, ok := g.runners[language]
	if !ok {
		return Runner{}, errors.Wrap(ErrUnsupported, language)
	}
	return r, nil
}

// Supported lists registered language names in stable order.
func (g *Registry) Supported() []string {
	names := make([]string, 0, len(g.runners))
	for name := range g.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
