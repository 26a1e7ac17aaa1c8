package environment

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayNight_FlipsEveryPeriod(t *testing.T) {
	d := NewDayNight(3)
	got := make([]bool, 0, 9)
	for i := 0; i < 9; i++ {
		got = append(got, d.Tick())
	}
	assert.Equal(t, []bool{false, false, true, true, true, false, false, false, true}, got)
}

func TestDayNight_DefaultPeriod(t *testing.T) {
	assert.Equal(t, DefaultDayNightPeriod, NewDayNight(0).Period)
}

func TestWeatherCycle_ChangesOnlyOnPeriodBoundary(t *testing.T) {
	w := NewWeatherCycle(5, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, WeatherSun, w.Current)

	previous := w.Current
	for i := 1; i <= 50; i++ {
		current := w.Tick()
		assert.True(t, slices.Contains(Weathers(), current))
		if i%5 != 0 {
			assert.Equal(t, previous, current, "tick %d", i)
		}
		previous = current
	}
}

func TestWeatherCycle_CoversAllWeathers(t *testing.T) {
	w := NewWeatherCycle(1, rand.New(rand.NewPCG(7, 7)))
	seen := map[Weather]bool{}
	for i := 0; i < 400; i++ {
		seen[w.Tick()] = true
	}
	assert.Len(t, seen, len(Weathers()))
}

func TestAt_IsDeterministic(t *testing.T) {
	base := time.Unix(1_700_000_010, 0)
	first := At(base)
	assert.Equal(t, first.Weather, At(base.Add(5*time.Second)).Weather)
	assert.Equal(t, first, At(base))

	assert.False(t, At(time.Unix(0, 0)).IsNight)
	assert.True(t, At(time.Unix(DefaultDayNightPeriod, 0)).IsNight)
	assert.False(t, At(time.Unix(2*DefaultDayNightPeriod, 0)).IsNight)
}

func TestDayNight_AdvanceMatchesTicks(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 5, 6, 7, 13} {
		ticked := NewDayNight(3)
		for i := 0; i < n; i++ {
			ticked.Tick()
		}
		jumped := NewDayNight(3)
		jumped.Advance(n)
		assert.Equal(t, ticked.IsNight, jumped.IsNight, "n=%d", n)
		assert.Equal(t, ticked.Tick(), jumped.Tick(), "n=%d next tick", n)
	}
}

func TestWeatherCycle_AdvanceMatchesTicks(t *testing.T) {
	ticked := NewWeatherCycle(4, rand.New(rand.NewPCG(3, 9)))
	for i := 0; i < 23; i++ {
		ticked.Tick()
	}
	jumped := NewWeatherCycle(4, rand.New(rand.NewPCG(3, 9)))
	jumped.Advance(23)
	assert.Equal(t, ticked.Current, jumped.Current)
	assert.Equal(t, ticked.Advance(1), jumped.Advance(1))
}

func TestAt_FollowsDayNightCycle(t *testing.T) {
	sky := NewDayNight(DefaultDayNightPeriod)
	for second := 1; second <= 3*DefaultDayNightPeriod; second++ {
		night := sky.Tick()
		if second%50 == 0 {
			assert.Equal(t, night, At(time.Unix(int64(second), 0)).IsNight, "second %d", second)
		}
	}
}
