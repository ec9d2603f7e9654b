package utils

import (
	"testing"
	"time"
)

func Test_Watch(t *testing.T) {
	watch := Watch{}
	if watch.Elapsed() != 0 {
		t.Error("unstarted watch should be zero")
	}

	watch.Start()
	time.Sleep(200 * time.Millisecond)
	lap := watch.Lap()
	if !FloatEquals(lap.Seconds(), 0.2, 0.1) {
		t.Error("lap seconds mismatch", lap.Seconds())
	}
	time.Sleep(200 * time.Millisecond)
	lap2 := watch.Lap()
	if !FloatEquals(lap2.Seconds(), 0.2, 0.1) {
		t.Error("second lap seconds mismatch", lap2.Seconds())
	}

	total := watch.Elapsed()
	if !FloatEquals(total.Seconds(), 0.4, 0.1) {
		t.Error("elapsed seconds mismatch", total.Seconds())
	}
}
