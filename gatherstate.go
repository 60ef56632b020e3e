// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import "sync/atomic"

// GatherState is the state of the wait for a usable local address.
type GatherState int32

const (
	// GatherStateWaiting means the candidate listener is attached and the
	// timeout is armed.
	GatherStateWaiting GatherState = iota

	// GatherStateResolved means a usable address was found first.
	GatherStateResolved

	// GatherStateTimedOut means the timeout fired, or the context was
	// cancelled, first.
	GatherStateTimedOut
)

// This is done this way because of a linter.
const (
	gatherStateWaitingStr  = "waiting"
	gatherStateResolvedStr = "resolved"
	gatherStateTimedOutStr = "timed-out"
)

func (s GatherState) String() string {
	switch s {
	case GatherStateWaiting:
		return gatherStateWaitingStr
	case GatherStateResolved:
		return gatherStateResolvedStr
	case GatherStateTimedOut:
		return gatherStateTimedOutStr
	default:
		return unknownStr
	}
}

type atomicGatherState struct {
	val int32
}

func (s *atomicGatherState) get() GatherState {
	return GatherState(atomic.LoadInt32(&s.val))
}

// leave moves out of GatherStateWaiting. Only the first caller succeeds.
func (s *atomicGatherState) leave(to GatherState) (swapped bool) {
	return atomic.CompareAndSwapInt32(&s.val, int32(GatherStateWaiting), int32(to))
}
