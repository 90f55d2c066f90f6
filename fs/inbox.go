package fs

import (
	"errors"
	"io/fs"
	"os"

	"github.com/fwojciec/metis"
)

// ReadInbox returns the URLs listed in an inbox seed file. A missing file
// yields no URLs.
func ReadInbox(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return metis.ExtractURLs(string(data)), nil
}
