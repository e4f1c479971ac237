// Package sources holds the curated list of school pages the crawler visits.
package sources

import (
	_ "embed"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/schools-cli/internal/model"
)

//go:embed sources.yaml
var embedded []byte

type file struct {
	Sources []model.Source `yaml:"sources"`
}

// Default returns the built-in source list.
func Default() ([]model.Source, error) {
	return Parse(embedded)
}

// Parse decodes a YAML source list and validates it. Links must be absolute
// http(s) URLs and unique across the list.
func Parse(data []byte) ([]model.Source, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "sources: parse")
	}

	seen := make(map[string]bool, len(f.Sources))
	out := make([]model.Source, 0, len(f.Sources))
	for i, s := range f.Sources {
		s.Name = strings.TrimSpace(s.Name)
		s.Link = strings.TrimSpace(s.Link)
		if s.Name == "" {
			return nil, eris.Errorf("sources: entry %d has no name", i)
		}
		u, err := url.Parse(s.Link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, eris.Errorf("sources: entry %q has invalid link %q", s.Name, s.Link)
		}
		if seen[s.Link] {
			return nil, eris.Errorf("sources: duplicate link %q", s.Link)
		}
		seen[s.Link] = true
		out = append(out, s)
	}
	return out, nil
}

// Filter returns the sources whose name or link contains query
// (case-insensitive). An empty query returns all sources.
func Filter(all []model.Source, query string) []model.Source {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all
	}
	var out []model.Source
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.Name), query) ||
			strings.Contains(strings.ToLower(s.Link), query) {
			out = append(out, s)
		}
	}
	return out
}
