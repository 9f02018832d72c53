// Package snowflake decodes platform identifiers.
package snowflake

import (
	"fmt"
	"strconv"
	"time"
)

// Epoch is the platform epoch (2015-01-01T00:00:00Z) in Unix milliseconds.
const Epoch int64 = 1420070400000

// TimestampMillis returns the creation time encoded in id, in Unix milliseconds.
func TimestampMillis(id string) (int64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return int64(n>>22) + Epoch, nil
}

// Timestamp returns the creation time encoded in id.
func Timestamp(id string) (time.Time, error) {
	ms, err := TimestampMillis(id)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Age returns how long ago id was created relative to now.
func Age(id string, now time.Time) (time.Duration, error) {
	ts, err := Timestamp(id)
	if err != nil {
		return 0, err
	}
	return now.Sub(ts), nil
}
