package rcl

import (
	"testing"
)

func TestNewTimeNormalizes(t *testing.T) {
	tm := NewTime(1, 2*secondInNanoseconds+5)
	if tm.Sec != 3 || tm.NSec != 5 {
		t.Errorf("expected {3 5} but %v", tm)
	}
}

func TestTimeToNSec(t *testing.T) {
	tm := NewTime(2, 500)
	if tm.ToNSec() != 2*secondInNanoseconds+500 {
		t.Fail()
	}
}

func TestWallClockProgresses(t *testing.T) {
	now := WallClock{}.Now()
	if now.IsZero() {
		t.Fail()
	}
}
