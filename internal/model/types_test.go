package model

import (
	"testing"
	"time"
)

func TestBucketMS(t *testing.T) {
	tm := time.Date(2025, 3, 14, 9, 30, 15, 812_000_000, time.UTC)
	got := BucketMS(tm)
	want := time.Date(2025, 3, 14, 9, 30, 15, 0, time.UTC).UnixMilli()
	if got != want {
		t.Errorf("BucketMS = %d, want %d", got, want)
	}
}

func TestBucketMS_AlreadyAligned(t *testing.T) {
	tm := time.Date(2025, 3, 14, 9, 30, 15, 0, time.UTC)
	if got := BucketMS(tm); got != tm.UnixMilli() {
		t.Errorf("BucketMS = %d, want %d", got, tm.UnixMilli())
	}
}

func TestISOTime(t *testing.T) {
	ms := time.Date(2025, 3, 14, 9, 30, 15, 0, time.UTC).UnixMilli()
	if got := ISOTime(ms); got != "2025-03-14T09:30:15Z" {
		t.Errorf("ISOTime = %q, want %q", got, "2025-03-14T09:30:15Z")
	}
}

func TestSideString(t *testing.T) {
	if SideBuy.String() != "buy" {
		t.Errorf("SideBuy.String() = %q", SideBuy.String())
	}
	if SideSell.String() != "sell" {
		t.Errorf("SideSell.String() = %q", SideSell.String())
	}
	if SideUnknown.String() != "unknown" {
		t.Errorf("SideUnknown.String() = %q", SideUnknown.String())
	}
}
