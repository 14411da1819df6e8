package effects_test

import (
	"fmt"

	"github.com/pulusound/grit/dsp/effects"
)

func ExampleHardClip() {
	for _, x := range []float64{0.5, -0.3, 1.2} {
		fmt.Printf("%.1f ", effects.HardClip(x, 0))
	}

	fmt.Printf("%.1f\n", effects.HardClip(0.5, 1))

	// Output:
	// 0.5 -0.3 1.0 1.0
}

func ExampleMaximizer() {
	m, err := effects.NewMaximizer(48000)
	if err != nil {
		panic(err)
	}

	fmt.Println(m.Delay(), m.Capacity(), m.DelayWraps())

	// Output:
	// 24 16 true
}
