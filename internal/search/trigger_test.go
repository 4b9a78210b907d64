package search

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTriggerExplicitAlwaysWins(t *testing.T) {
	trigger := NewTriggerWithClock(fixedClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	if !trigger.ShouldSearch(true, "随便聊聊") {
		t.Fatalf("explicit request should always trigger search")
	}
}

func TestTriggerKeywordCategories(t *testing.T) {
	trigger := NewTriggerWithClock(fixedClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	cases := []struct {
		text string
		want bool
	}{
		{"今天天气怎么样", true},
		{"帮我搜索一下相关资料", true},
		{"最近有什么新闻", true},
		{"这个股票的股价是多少", true},
		{"2025年的假期安排", true},
		{"2026年春节是哪天", true},
		{"what is the latest release", true},
		{"我有点难过", false},
		{"怎么学好英语", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := trigger.ShouldSearch(false, tc.text); got != tc.want {
			t.Fatalf("ShouldSearch(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestTriggerYearTokensFollowClock(t *testing.T) {
	trigger := NewTriggerWithClock(fixedClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	if !trigger.ShouldSearch(false, "2031年的计划") {
		t.Fatalf("next-year token should trigger search")
	}
	if trigger.ShouldSearch(false, "2025年发生过什么") {
		t.Fatalf("stale year token should not trigger search")
	}
}

func TestTriggerYearTokensTrackRolloverOnOneInstance(t *testing.T) {
	now := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	trigger := NewTriggerWithClock(func() time.Time { return now })

	if trigger.ShouldSearch(false, "2027年的规划") {
		t.Fatalf("year after next should not trigger before rollover")
	}

	// The same instance keeps matching after the clock crosses New Year.
	now = time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)
	if !trigger.ShouldSearch(false, "2027年的规划") {
		t.Fatalf("next-year token should trigger after rollover")
	}
	if !trigger.ShouldSearch(false, "2026年有什么安排") {
		t.Fatalf("new current-year token should trigger after rollover")
	}
}
