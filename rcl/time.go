package rcl

import (
	gotime "time"
)

const secondInNanoseconds = 1000000000

const maxUint32 = int64(^uint32(0))

func normalizeTime(sec int64, nsec int64) (uint32, uint32) {
	if nsec >= secondInNanoseconds {
		sec += nsec / secondInNanoseconds
		nsec = nsec % secondInNanoseconds
	} else if nsec < 0 {
		sec += nsec/secondInNanoseconds - 1
		nsec = nsec%secondInNanoseconds + secondInNanoseconds
	}

	if sec < 0 || sec > maxUint32 {
		panic("time is out of range")
	}

	return uint32(sec), uint32(nsec)
}

// Time is a point in time as {seconds, nanoseconds}. It stamps parameter
// events and any other message carrying a timestamp.
type Time struct {
	Sec  uint32
	NSec uint32
}

// NewTime creates a normalized Time from seconds and nanoseconds.
func NewTime(sec uint32, nsec uint32) Time {
	s, ns := normalizeTime(int64(sec), int64(nsec))
	return Time{Sec: s, NSec: ns}
}

// ToNSec returns the time as nanoseconds since the epoch.
func (t Time) ToNSec() uint64 {
	return uint64(t.Sec)*secondInNanoseconds + uint64(t.NSec)
}

// IsZero reports whether the time is the zero instant.
func (t Time) IsZero() bool {
	return t.Sec == 0 && t.NSec == 0
}

// Clock supplies timestamps for a node and its parameter store.
type Clock interface {
	Now() Time
}

// WallClock reads the system clock.
type WallClock struct{}

func (WallClock) Now() Time {
	now := gotime.Now()
	sec, nsec := normalizeTime(now.Unix(), int64(now.Nanosecond()))
	return Time{Sec: sec, NSec: nsec}
}
