package fs

import (
	"path/filepath"
	"strings"

	"github.com/fwojciec/metis"
	"gopkg.in/yaml.v3"
)

// baseFile is the Obsidian Bases index of a collection.
type baseFile struct {
	Title   string       `yaml:"title"`
	Type    string       `yaml:"type"`
	Sources []baseSource `yaml:"sources"`
}

type baseSource struct {
	Title    string `yaml:"title"`
	URL      string `yaml:"url"`
	Status   string `yaml:"status"`
	Platform string `yaml:"platform"`
}

// BasePath returns the index path for a collection folder: the folder path
// with a .base extension.
func BasePath(dir string) string {
	return strings.TrimSuffix(filepath.Clean(dir), string(filepath.Separator)) + ".base"
}

// WriteBaseFile writes an Obsidian Bases index listing records.
func WriteBaseFile(path string, records []*metis.Record) error {
	b := baseFile{
		Title:   "Inbox URLs",
		Type:    "dynamic",
		Sources: make([]baseSource, 0, len(records)),
	}
	for _, r := range records {
		src := baseSource{
			Title:    r.Title(),
			URL:      r.URL(),
			Status:   string(r.Status()),
			Platform: r.Platform(),
		}
		if src.Title == "" {
			src.Title = metis.UntitledTitle
		}
		if src.Status == "" {
			src.Status = string(metis.StatusPending)
		}
		if src.Platform == "" {
			src.Platform = metis.PlatformUnknown
		}
		b.Sources = append(b.Sources, src)
	}

	data, err := yaml.Marshal(&b)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}
