package domain

// TapsPerToken is the number of taps that convert into one whole token.
const TapsPerToken = 100

// SettleTaps applies taps to a partial-progress counter and returns the
// whole tokens earned and the new counter value. Integer division absorbs
// the case where batched taps overshoot by more than one full cycle, so the
// counter always lands back in [0, TapsPerToken).
func SettleTaps(counter, taps int) (earned int, newCounter int) {
	c := counter + taps
	if c >= TapsPerToken {
		earned = c / TapsPerToken
		c %= TapsPerToken
	}
	return earned, c
}

// PriceForUsers is the deterministic pricing formula: the global token
// price after totalUsers cumulative registrations.
func PriceForUsers(initialPrice, incrementPerUser float64, totalUsers int64) float64 {
	return initialPrice + float64(totalUsers)*incrementPerUser
}
