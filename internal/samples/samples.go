// Package samples embeds the example simulation templates written by the
// geninfiles directive.
package samples

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

//go:embed templates/*.yaml
var templates embed.FS

// FilePrefix is prepended to the output name of each written sample.
const FilePrefix = "infile_"

// Sample is one embedded template.
type Sample struct {
	Name string // OutputName of the template
	Data []byte // raw YAML as embedded
}

// FileName returns the name geninfiles writes the sample to.
func (s Sample) FileName() string {
	return FilePrefix + s.Name + simulation.FileExt
}

// All returns the embedded samples sorted by name.
func All() ([]Sample, error) {
	entries, err := fs.ReadDir(templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded samples: %w", err)
	}

	var out []Sample
	for _, e := range entries {
		data, err := templates.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read sample %s: %w", e.Name(), err)
		}
		in, _, err := simulation.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", e.Name(), err)
		}
		out = append(out, Sample{Name: in.OutputName, Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// WriteAll writes every sample into dir and returns the written paths.
func WriteAll(dir string) ([]string, error) {
	all, err := All()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(all))
	for _, s := range all {
		p := filepath.Join(dir, s.FileName())
		if err := os.WriteFile(p, s.Data, 0644); err != nil {
			return paths, fmt.Errorf("write sample: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
