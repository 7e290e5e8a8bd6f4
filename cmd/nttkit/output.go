package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// result is the output of a command.
type result interface {
	writeText(w io.Writer) error
}

func render(c *cli.Context, r result) error {
	w := c.App.Writer
	switch format := c.String(outputFlag); format {
	case outputText:
		return r.writeText(w)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encoding result")
		}
		return enc.Close()
	default:
		return errors.Errorf("unknown output format %q, must be %s or %s", format, outputText, outputYAML)
	}
}
