package workitem

import "strconv"

// Extract returns the work item id embedded in a branch name: the first
// maximal run of decimal digits, parsed as an unsigned integer. Leading
// zeros are consumed as part of the value ("wi007" → 7).
//
// The first run wins even when a later one looks more plausible:
// "release/v2.1-fix-123" → 2.
//
// A name without digits has no id; ok is false and that is not an error.
func Extract(branchName string) (id uint64, ok bool) {
	start := -1
	end := len(branchName)
	for i := 0; i < len(branchName); i++ {
		if branchName[i] >= '0' && branchName[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			end = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}

	id, err := strconv.ParseUint(branchName[start:end], 10, 64)
	if err != nil {
		// Digit run too long to fit; treat as no id.
		return 0, false
	}
	return id, true
}
