// Package environment holds the periodic sky cycles of the mind garden.
package environment

import (
	"math/rand/v2"
	"time"
)

type Weather string

const (
	WeatherSun     Weather = "sun"
	WeatherRain    Weather = "rain"
	WeatherRainbow Weather = "rainbow"
	WeatherClouds  Weather = "clouds"
)

var weathers = [...]Weather{WeatherSun, WeatherRain, WeatherRainbow, WeatherClouds}

const (
	DefaultDayNightPeriod = 300
	DefaultWeatherPeriod  = 30
)

// DayNight flips between day and night every Period ticks.
type DayNight struct {
	Period  int
	IsNight bool
	elapsed int
}

func NewDayNight(period int) *DayNight {
	if period <= 0 {
		period = DefaultDayNightPeriod
	}
	return &DayNight{Period: period}
}

func (d *DayNight) Tick() bool {
	return d.Advance(1)
}

// Advance moves the cycle n ticks forward at once.
func (d *DayNight) Advance(n int) bool {
	if n <= 0 {
		return d.IsNight
	}
	total := d.elapsed + n
	if (total/d.Period)%2 == 1 {
		d.IsNight = !d.IsNight
	}
	d.elapsed = total % d.Period
	return d.IsNight
}

// WeatherCycle draws a new weather uniformly at random every Period ticks.
type WeatherCycle struct {
	Period  int
	Current Weather
	rnd     *rand.Rand
	elapsed int
}

func NewWeatherCycle(period int, rnd *rand.Rand) *WeatherCycle {
	if period <= 0 {
		period = DefaultWeatherPeriod
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &WeatherCycle{Period: period, Current: WeatherSun, rnd: rnd}
}

func (w *WeatherCycle) Tick() Weather {
	return w.Advance(1)
}

// Advance moves the cycle n ticks forward, drawing once per period
// boundary crossed.
func (w *WeatherCycle) Advance(n int) Weather {
	if n <= 0 {
		return w.Current
	}
	total := w.elapsed + n
	for range total / w.Period {
		w.Current = weathers[w.rnd.IntN(len(weathers))]
	}
	w.elapsed = total % w.Period
	return w.Current
}

type Snapshot struct {
	IsNight    bool      `json:"isNight"`
	Weather    Weather   `json:"weather"`
	ServerTime time.Time `json:"serverTime"`
}

// weatherSeed mixes the period index into the generator of its weather.
const weatherSeed = 0x9e3779b97f4a7c15

// At derives the sky from wall-clock time so that every viewer sees the
// same environment for the same second. The day/night cycle is replayed
// from the start of the current day and night pair; each weather period
// gets a cycle seeded by its index and stepped across one boundary.
func At(t time.Time) Snapshot {
	seconds := t.Unix()

	sky := NewDayNight(DefaultDayNightPeriod)
	sky.Advance(int(seconds % (2 * DefaultDayNightPeriod)))

	period := seconds / DefaultWeatherPeriod
	weather := NewWeatherCycle(DefaultWeatherPeriod, rand.New(rand.NewPCG(uint64(period), weatherSeed)))
	weather.Advance(DefaultWeatherPeriod)

	return Snapshot{
		IsNight:    sky.IsNight,
		Weather:    weather.Current,
		ServerTime: t.UTC(),
	}
}

func Weathers() []Weather {
	out := make([]Weather, len(weathers))
	copy(out, weathers[:])
	return out
}
