package lifecycle

import (
	"errors"
	"testing"
)

func TestShouldEmitDiscontinuity(t *testing.T) {
	reason := errors.New("reason")

	cases := []struct {
		name                 string
		ev                   ChannelEvent
		hasAttachedOnce      bool
		isExplicitlyDetached bool
		want                 bool
	}{
		{
			name:            "attached, not resumed, attached before",
			ev:              ChannelEvent{Event: ChannelEventAttached, Resumed: false, Reason: reason},
			hasAttachedOnce: true,
			want:            true,
		},
		{
			name:            "update, not resumed, attached before",
			ev:              ChannelEvent{Event: ChannelEventUpdate, Resumed: false, Reason: reason},
			hasAttachedOnce: true,
			want:            true,
		},
		{
			name:            "attached, resumed",
			ev:              ChannelEvent{Event: ChannelEventAttached, Resumed: true},
			hasAttachedOnce: true,
			want:            false,
		},
		{
			name:            "attached, not resumed, but initial attach",
			ev:              ChannelEvent{Event: ChannelEventAttached, Resumed: false},
			hasAttachedOnce: false,
			want:            false,
		},
		{
			name:                 "attached, not resumed, but explicitly detached",
			ev:                   ChannelEvent{Event: ChannelEventAttached, Resumed: false},
			hasAttachedOnce:      true,
			isExplicitlyDetached: true,
			want:                 false,
		},
		{
			name:            "irrelevant event type",
			ev:              ChannelEvent{Event: ChannelEventDetached, Resumed: false},
			hasAttachedOnce: true,
			want:            false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := shouldEmitDiscontinuity(tc.ev, tc.hasAttachedOnce, tc.isExplicitlyDetached)
			if got != tc.want {
				t.Fatalf("shouldEmitDiscontinuity() = %v, want %v", got, tc.want)
			}
		})
	}
}
