package mock

import "github.com/fwojciec/metis"

var _ metis.Converter = (*Converter)(nil)

// Converter is a mock implementation of metis.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
