package main

import (
	"fmt"

	"github.com/pulusound/grit/dsp/grit"
	"github.com/pulusound/grit/dsp/param"
)

// ParamFlags are the processing parameters shared by render and analyze.
// Values are parsed and clamped by the parameter definitions.
type ParamFlags struct {
	Algorithm string `short:"a" default:"clip" placeholder:"name" help:"Algorithm: clip, shape, maximizer, an index or a display name."`
	Drive     string `default:"0" placeholder:"amount" help:"Clip drive, 0 to 1."`
	Shape     string `default:"0" placeholder:"amount" help:"Soft shape amount, 0 to 1."`
	EnvTime   string `default:"1 ms" placeholder:"time" help:"Maximizer envelope time, 0.1 ms to 1 ms."`
	Knee      string `default:"0 dB" placeholder:"gain" help:"Maximizer knee, -90 dB to 0 dB."`
}

func (f *ParamFlags) params() (grit.Params, error) {
	alg, err := grit.ParseAlgorithm(f.Algorithm)
	if err != nil {
		return grit.Params{}, err
	}

	p := grit.Params{Algorithm: alg}

	for _, field := range []struct {
		id   param.ID
		text string
		dst  *float64
	}{
		{param.IDClipDrive, f.Drive, &p.ClipDrive},
		{param.IDShape, f.Shape, &p.ShapeAmount},
		{param.IDEnvTime, f.EnvTime, &p.EnvTime},
		{param.IDKnee, f.Knee, &p.Knee},
	} {
		d, err := param.Lookup(field.id)
		if err != nil {
			return grit.Params{}, err
		}

		v, err := d.Parse(field.text)
		if err != nil {
			return grit.Params{}, fmt.Errorf("--%s: %w", flagName(field.id), err)
		}

		*field.dst = v
	}

	return p, nil
}

func flagName(id param.ID) string {
	switch id {
	case param.IDClipDrive:
		return "drive"
	case param.IDShape:
		return "shape"
	case param.IDEnvTime:
		return "env-time"
	case param.IDKnee:
		return "knee"
	default:
		return string(id)
	}
}
