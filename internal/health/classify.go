package health

import (
	"strings"
)

// authHints are the error-text fragments that reclassify a failed probe as
// degraded: the server process responded but wants credentials.
var authHints = []string{"auth", "token", "unauthorized", "forbidden"}

// classify maps a probe failure to a status using a case-insensitive
// substring match over the error text.
//
// This is a deliberate approximation and the only place in the gateway
// where error text drives control flow. Downstream servers do not expose
// structured error codes today; if they ever do, replace this function
// rather than extending it with more substrings.
func classify(err error) Status {
	if err == nil {
		return StatusHealthy
	}

	text := strings.ToLower(err.Error())
	for _, hint := range authHints {
		if strings.Contains(text, hint) {
			return StatusDegraded
		}
	}
	return StatusDown
}
