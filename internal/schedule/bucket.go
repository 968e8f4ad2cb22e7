package schedule

import "time"

// nextHourBoundary returns the first whole-hour wall-clock boundary at or
// after t. A time already on the hour is its own boundary.
func nextHourBoundary(t time.Time) time.Time {
	shifted := t.Add(59 * time.Minute)
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), shifted.Hour(), 0, 0, 0, shifted.Location())
}

// Bucketize splits one interval into hour-aligned buckets.
//
// The first bucket runs from the interval start to the first hour boundary
// plus one hour (capped at the interval end), so a ragged leading edge is
// absorbed into a bucket of at most 1h59. Subsequent buckets are exact
// hours. A trailing remainder shorter than an hour is merged backward into
// the last bucket instead of standing alone.
func Bucketize(iv Interval) []Interval {
	if !iv.Start.Before(iv.End) {
		return nil
	}

	boundary := nextHourBoundary(iv.Start)
	if !boundary.Before(iv.End) {
		return []Interval{iv}
	}

	firstEnd := boundary.Add(time.Hour)
	if firstEnd.After(iv.End) {
		firstEnd = iv.End
	}

	buckets := []Interval{{Start: iv.Start, End: firstEnd}}

	cur := firstEnd
	for !cur.Add(time.Hour).After(iv.End) {
		buckets = append(buckets, Interval{Start: cur, End: cur.Add(time.Hour)})
		cur = cur.Add(time.Hour)
	}

	if cur.Before(iv.End) {
		buckets[len(buckets)-1].End = iv.End
	}

	return buckets
}

// BucketizeSlots expands each free slot into its hour buckets, carrying the
// slot label and night flag onto every bucket.
func BucketizeSlots(slots []FreeSlot) []FreeSlot {
	var out []FreeSlot
	for _, slot := range slots {
		for _, b := range Bucketize(slot.Interval) {
			out = append(out, FreeSlot{Interval: b, Between: slot.Between, Night: slot.Night})
		}
	}
	return out
}
