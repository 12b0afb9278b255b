package store

import (
	"math"
	"time"
)

// maxWaitSamples bounds how much history feeds the wait estimate; older
// completions stop influencing it once newer ones exist.
const maxWaitSamples = 5

// AverageServiceMinutes returns the mean duration of the given service
// samples in minutes. With no samples it falls back to the service's
// static average, so the estimate works from the very first ticket.
func AverageServiceMinutes(samples []time.Duration, fallbackMinutes int) float64 {
	if len(samples) == 0 {
		return float64(fallbackMinutes)
	}
	if len(samples) > maxWaitSamples {
		samples = samples[:maxWaitSamples]
	}
	var total time.Duration
	for _, sample := range samples {
		total += sample
	}
	return total.Minutes() / float64(len(samples))
}

// EstimateWaitMinutes is peopleAhead times the average handling time,
// rounded to whole minutes and never negative.
func EstimateWaitMinutes(peopleAhead int, samples []time.Duration, fallbackMinutes int) int {
	estimate := int(math.Round(float64(peopleAhead) * AverageServiceMinutes(samples, fallbackMinutes)))
	if estimate < 0 {
		return 0
	}
	return estimate
}
