package model

import (
	"testing"
	"time"
)

func TestClockRunsOnlyWhenStarted(t *testing.T) {
	c := NewClock(time.Minute)
	if c.Tenths() != 600 {
		t.Fatalf("expected 600 tenths, got %d", c.Tenths())
	}
	c.Start()
	time.Sleep(20 * time.Millisecond)
	c.Stop()
	left := c.Remaining()
	if left >= time.Minute {
		t.Fatalf("expected time to have run, got %s", left)
	}
	time.Sleep(10 * time.Millisecond)
	if c.Remaining() != left {
		t.Fatalf("expected a stopped clock to hold still")
	}
	c.Reset()
	if c.Remaining() != time.Minute {
		t.Fatalf("expected reset to restore a minute, got %s", c.Remaining())
	}
}

func TestClockTenthsNeverNegative(t *testing.T) {
	c := NewClock(time.Millisecond)
	c.Start()
	time.Sleep(5 * time.Millisecond)
	if c.Tenths() != 0 {
		t.Fatalf("expected 0 tenths, got %d", c.Tenths())
	}
}
