package core_test

import (
	"fmt"

	"github.com/pulusound/grit/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d\n", cfg.SampleRate, cfg.BlockSize)

	// Output:
	// sampleRate=44100 blockSize=256
}

func ExampleInterleave() {
	out := make([]float64, 4)

	n := core.Interleave(out, [][]float64{{0.1, 0.3}, {0.2, 0.4}})
	fmt.Println(n, out)

	// Output:
	// 2 [0.1 0.2 0.3 0.4]
}
