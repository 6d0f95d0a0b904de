package gateway

import (
	"errors"
	"strings"
)

// ErrUnauthenticated is returned when a configured write is attempted
// without a signing wallet. The check runs before any network attempt.
var ErrUnauthenticated = errors.New("wallet account is not connected")

// ErrLocalID is returned when a ledger write names an identifier from
// the local allocation range. Local identifiers live above the u32
// range the ledger uses, so such a write can never address the intended
// record on-chain.
var ErrLocalID = errors.New("campaign identifier was allocated locally and does not exist on the ledger")

// hints maps known ledger rejection substrings to human-readable advice.
// Rejection text outside this set is shown as-is.
var hints = []struct {
	substring string
	message   string
}{
	{"Register as hoster first", "Please register as a hoster first through onboarding."},
	{"Register as developer first", "Please register as a developer first through onboarding."},
	{"Budget must be funded", "Please ensure your wallet holds enough funds to cover the budget."},
	{"Rate too low", "The rate you entered is too low. Please enter a higher rate."},
}

// Hint returns a human-readable message for a write failure. Known
// ledger rejections get specific advice; anything else passes through
// unchanged.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, h := range hints {
		if strings.Contains(msg, h.substring) {
			return h.message
		}
	}
	return msg
}
