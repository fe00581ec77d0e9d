package lifecycle

import (
	"strconv"
	"time"
)

const (
	orderIDPrefix = "ORD"
	orderIDDigits = 6

	// bound on how far the id clock is nudged past a collision
	maxOrderIDAttempts = 1000
)

// orderIDAt derives an order id from the last six digits of the Unix
// millisecond clock. Ids are only unique enough for a single session.
func orderIDAt(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > orderIDDigits {
		ms = ms[len(ms)-orderIDDigits:]
	}
	return orderIDPrefix + ms
}

// nextOrderID returns the first id at or after now that taken does not
// report as used. Once the clock window is exhausted it falls back to
// suffixing the base id, so a used id is never handed out.
func nextOrderID(now time.Time, taken func(string) bool) string {
	base := orderIDAt(now)
	id := base
	for i := 0; i < maxOrderIDAttempts && taken(id); i++ {
		now = now.Add(time.Millisecond)
		id = orderIDAt(now)
	}
	for n := 2; taken(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}
