package utils

import "time"

// NowEpoch returns the current time as Unix epoch seconds. API key
// timestamps are stored in this form.
func NowEpoch() int64 {
	return time.Now().Unix()
}
