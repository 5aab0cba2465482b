package keyspace

import "sort"

// SortScoredMembers orders members by ascending score, ties broken by
// member name. This is the rank order ZSetRange reports.
func SortScoredMembers(members []ScoredMember) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score < members[j].Score
		}
		return members[i].Member < members[j].Member
	})
}

// RangeBounds translates an inclusive start/stop index pair, negative
// values counting from the tail, into half-open slice bounds over a
// collection of n elements. ok is false when the window selects nothing.
// Session implementations share this so list and sorted-set range
// semantics stay identical across backends.
func RangeBounds(n int, start, stop int64) (lo, hi int, ok bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += int64(n)
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += int64(n)
	}
	if stop >= int64(n) {
		stop = int64(n) - 1
	}
	if start > stop || start >= int64(n) {
		return 0, 0, false
	}
	return int(start), int(stop) + 1, true
}

// RemoveOccurrences deletes occurrences of value from list: count > 0
// removes the first count matches from the head, count < 0 the first
// -count matches from the tail, and 0 removes every match.
func RemoveOccurrences(list []string, value string, count int64) []string {
	switch {
	case count == 0:
		out := make([]string, 0, len(list))
		for _, v := range list {
			if v != value {
				out = append(out, v)
			}
		}
		return out
	case count > 0:
		out := make([]string, 0, len(list))
		removed := int64(0)
		for _, v := range list {
			if v == value && removed < count {
				removed++
				continue
			}
			out = append(out, v)
		}
		return out
	default:
		out := make([]string, 0, len(list))
		removed := int64(0)
		for i := len(list) - 1; i >= 0; i-- {
			if list[i] == value && removed < -count {
				removed++
				continue
			}
			out = append(out, list[i])
		}
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out
	}
}
