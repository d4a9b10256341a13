package lifecycle

import "context"

// retryDetachUntilSettled implements the RELEASE detach retry loop of
// spec.md §4.4: keep calling Detach until it either succeeds, or the
// channel has settled into FAILED. There is no retry cap and no overall
// timeout (see spec.md §9, Open Questions) — the channel is being torn
// down regardless, so this only exists to give it a fair chance to
// reach DETACHED before RELEASE gives up on it.
func retryDetachUntilSettled(ctx context.Context, channel ChannelAdapter, clock Clock) error {
	for {
		err := channel.Detach(ctx)
		if err == nil {
			return nil
		}
		if channel.State() == ChannelStateFailed {
			return err
		}
		clock.Sleep(releaseRetryInterval)
	}
}
