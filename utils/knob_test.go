package utils

import (
	"math"
	"sync"
	"testing"

	"go.viam.com/test"
)

func TestKnob(t *testing.T) {
	k, err := NewKnob("expected_max_diameter_m", 0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, k.Name(), test.ShouldEqual, "expected_max_diameter_m")
	test.That(t, k.Load(), test.ShouldEqual, 0.5)

	test.That(t, k.Store(0.75), test.ShouldBeNil)
	test.That(t, k.Load(), test.ShouldEqual, 0.75)
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		test.That(t, k.Store(bad), test.ShouldNotBeNil)
		test.That(t, k.Load(), test.ShouldEqual, 0.75)
	}

	_, err = NewKnob("d", 0)
	test.That(t, err, test.ShouldNotBeNil)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			test.That(t, k.Store(v), test.ShouldBeNil)
			test.That(t, k.Load(), test.ShouldBeGreaterThan, 0)
		}(float64(i) / 10)
	}
	wg.Wait()
}
