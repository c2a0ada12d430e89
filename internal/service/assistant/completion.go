package assistant

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var completionMarkers = []string{"day 1", "day-by-day", "complete itinerary"}

// IsFinalItinerary guesses whether a reply contains the finished itinerary.
// It only feeds the "complete" flag returned to the client.
func IsFinalItinerary(response string) bool {
	lower := cases.Lower(language.Und).String(response)
	if !strings.Contains(lower, "itinerary") {
		return false
	}
	for _, marker := range completionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
