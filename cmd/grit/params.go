package main

import (
	"fmt"
	"os"

	"github.com/pulusound/grit/dsp/param"
	"github.com/pulusound/grit/internal/cli"
)

// ParamsCmd lists the parameter table.
type ParamsCmd struct{}

// Run prints every parameter definition.
func (c *ParamsCmd) Run(_ *Globals) error {
	rows := make([][]string, 0, len(param.Definitions()))

	for _, d := range param.Definitions() {
		smoothing := "-"
		if d.Smoothing != param.StyleNone {
			smoothing = fmt.Sprintf("%s %g ms", d.Smoothing, d.SmoothingMs)
		}

		rows = append(rows, []string{
			string(d.ID),
			d.Name,
			d.Format(d.Min) + " .. " + d.Format(d.Max),
			d.Format(d.Default),
			smoothing,
		})
	}

	fmt.Fprint(os.Stdout, cli.Table([]string{"ID", "Name", "Range", "Default", "Smoothing"}, rows))

	return nil
}
