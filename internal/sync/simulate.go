package sync

import (
	"math/rand"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/source"
)

// SimulatedConditions generates plausible sensor data for n locations,
// bounded per field, for cycles where the live provider is unavailable.
func SimulatedConditions(n int) []source.CurrentConditions {
	out := make([]source.CurrentConditions, n)
	for i := range out {
		out[i] = source.CurrentConditions{
			Temperature2m:      15 + randRange(-5, 10),
			RelativeHumidity2m: float64(30 + rand.Intn(51)),
			ApparentTemp:       15,
			IsDay:              1,
			WeatherCode:        0,
			WindSpeed10m:       randRange(5, 25),
			WindDirection10m:   float64(rand.Intn(361)),
			SurfacePressure:    1010 + randRange(-5, 5),
			UVIndex:            randRange(0, 8),
			DewPoint2m:         10,
			Visibility:         float64(8000 + rand.Intn(12001)),
			CloudCover:         float64(rand.Intn(101)),
			ShortwaveRadiation: randRange(0, 800),
		}
	}
	return out
}

func randRange(min, max float64) float64 {
	return min + rand.Float64()*(max-min)
}
