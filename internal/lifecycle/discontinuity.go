package lifecycle

// shouldEmitDiscontinuity is a pure function of {event, hasAttachedOnce,
// isExplicitlyDetached}, kept free of manager state so it can be unit
// tested in isolation (spec.md §9, "Discontinuity detector").
//
// A discontinuity is signalled iff all of:
//  1. the event is either UPDATE or a transition to ATTACHED,
//  2. the event's resumed flag is false,
//  3. hasAttachedOnce is true (this isn't an initial attach),
//  4. isExplicitlyDetached is false (the gap wasn't intentional).
func shouldEmitDiscontinuity(ev ChannelEvent, hasAttachedOnce, isExplicitlyDetached bool) bool {
	isRelevantEvent := ev.Event == ChannelEventUpdate || ev.Event == ChannelEventAttached
	if !isRelevantEvent {
		return false
	}
	if ev.Resumed {
		return false
	}
	if !hasAttachedOnce {
		return false
	}
	if isExplicitlyDetached {
		return false
	}
	return true
}
