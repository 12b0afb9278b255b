package store

import "waitline/internal/models"

// Tickets only move forward. The snooze operation reorders two waiting
// tickets without touching status and is not part of this table.
var transitionMap = map[string][]string{
	models.StatusArriving:  {models.StatusWaiting},
	models.StatusWaiting:   {models.StatusServing},
	models.StatusServing:   {models.StatusCompleted},
	models.StatusCompleted: {},
}

func ValidTransition(from, to string) bool {
	allowed, ok := transitionMap[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

func KnownStatus(status string) bool {
	_, ok := transitionMap[status]
	return ok
}
