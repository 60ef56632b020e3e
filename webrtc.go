// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"context"
	"sync"
	"time"
)

const webrtcTest = "webrtc"

// ICECandidateEvent is delivered for every gathered local candidate. An
// empty Candidate marks the end of gathering.
type ICECandidateEvent struct {
	Candidate  string
	Foundation string
}

// Negotiator is a local session negotiation capability. It is used for a
// single probe run and closed afterwards.
type Negotiator interface {
	// CreateOffer creates an offer, applies it as the local description
	// and returns its session text.
	CreateOffer(ctx context.Context) (string, error)

	// LocalDescription returns the current local session text, including
	// candidates gathered so far.
	LocalDescription() string

	// OnICECandidate attaches handler and returns a function that detaches it.
	OnICECandidate(handler func(ICECandidateEvent)) (remove func())

	Close() error
}

// NegotiationResult is the negotiation probe signature.
type NegotiationResult struct {
	// Unsupported is set when no offer could be produced.
	Unsupported bool `json:"unsupported,omitempty"`

	Audio          []CodecDescriptor `json:"audio,omitempty"`
	Video          []CodecDescriptor `json:"video,omitempty"`
	Extensions     []string          `json:"extensions,omitempty"`
	Candidate      string            `json:"candidate,omitempty"`
	Foundation     string            `json:"foundation,omitempty"`
	FoundationProp string            `json:"foundationProp,omitempty"`
	CandidateType  string            `json:"candidateType,omitempty"`
	Protocol       string            `json:"protocol,omitempty"`
	Address        string            `json:"address,omitempty"`
	STUNConnection string            `json:"stunConnection,omitempty"`
	Hash           string            `json:"$hash,omitempty"`
}

// hashedNegotiation excludes the fields that change between runs in the
// same environment, such as candidate ports.
type hashedNegotiation struct {
	Audio          []CodecDescriptor `json:"audio"`
	Video          []CodecDescriptor `json:"video"`
	Extensions     []string          `json:"extensions"`
	Foundation     string            `json:"foundation"`
	FoundationProp string            `json:"foundationProp"`
	Address        string            `json:"address"`
}

// WebRTC creates a local offer on n and waits, bounded by the negotiation
// timeout, for a usable local address. A missing negotiator, a failed offer
// or an empty offer at timeout yields an Unsupported result, not an error.
func (a *API) WebRTC(ctx context.Context, n Negotiator) (*NegotiationResult, error) {
	var result *NegotiationResult
	err := a.runProbe(webrtcTest, func(y yielder) error {
		r, err := a.negotiate(ctx, y, n)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	if !result.Unsupported {
		result.Hash = a.hash(hashedNegotiation{
			Audio:          result.Audio,
			Video:          result.Video,
			Extensions:     result.Extensions,
			Foundation:     result.Foundation,
			FoundationProp: result.FoundationProp,
			Address:        result.Address,
		})
	}
	return result, nil
}

func (a *API) negotiate(ctx context.Context, y yielder, n Negotiator) (*NegotiationResult, error) {
	log := a.newLogger("webrtc")

	if n == nil {
		return &NegotiationResult{Unsupported: true}, nil
	}

	if err := y.yield(ctx); err != nil {
		if closeErr := n.Close(); closeErr != nil {
			log.Warnf("failed to close negotiator: %v", closeErr)
		}
		return nil, err
	}

	var (
		state    atomicGatherState
		mu       sync.Mutex
		first    string
		resolved = make(chan *NegotiationResult, 1)
	)

	firstCandidate := func() (string, string) {
		mu.Lock()
		defer mu.Unlock()
		return first, ParseFoundation(first)
	}

	// Gathering starts when the offer is applied, so the listener must be
	// attached before CreateOffer.
	remove := n.OnICECandidate(func(e ICECandidateEvent) {
		if e.Candidate == "" || state.get() != GatherStateWaiting {
			return
		}

		mu.Lock()
		if first == "" {
			first = e.Candidate
		}
		mu.Unlock()

		address := ExtractAddress(n.LocalDescription())
		if address == "" {
			return
		}

		if !state.leave(GatherStateResolved) {
			return
		}

		r := &NegotiationResult{}
		r.Candidate, r.Foundation = firstCandidate()
		r.Foundation = InterfaceLabel(r.Foundation)
		r.CandidateType, r.Protocol = describeCandidate(r.Candidate)
		r.FoundationProp = e.Foundation
		r.Address = address
		r.STUNConnection = e.Candidate
		resolved <- r
	})

	cleanup := func() {
		if remove != nil {
			remove()
		}
		if err := n.Close(); err != nil {
			log.Warnf("failed to close negotiator: %v", err)
		}
	}

	session, err := n.CreateOffer(ctx)
	if err != nil {
		log.Warnf("failed to create offer: %v", err)
		state.leave(GatherStateTimedOut)
		cleanup()
		return &NegotiationResult{Unsupported: true}, nil
	}

	if session != "" {
		checkSessionDescription(session, log)
	}
	caps := ParseCapabilities(session)
	extensions := ParseExtensions(session)

	derived := func() *NegotiationResult {
		return &NegotiationResult{Audio: caps.Audio, Video: caps.Video, Extensions: extensions}
	}

	timeout := a.settingEngine.negotiationTimeout()
	timer := time.NewTimer(timeout)

	var result *NegotiationResult
	select {
	case result = <-resolved:
	case <-timer.C:
	case <-ctx.Done():
	}

	switch {
	case result == nil && state.leave(GatherStateTimedOut):
		log.Debugf("no usable address within %s", timeout)
		result = timedOutResult(session, derived, firstCandidate)
	default:
		if result == nil {
			result = <-resolved
		}
		// The handler may resolve before the offer text is known.
		result.Audio, result.Video, result.Extensions = caps.Audio, caps.Video, extensions
	}

	timer.Stop()
	cleanup()

	return result, nil
}

func timedOutResult(session string, derived func() *NegotiationResult, firstCandidate func() (string, string)) *NegotiationResult {
	if session == "" {
		return &NegotiationResult{Unsupported: true}
	}

	r := derived()
	candidate, foundation := firstCandidate()
	r.Candidate = candidate
	r.Foundation = InterfaceLabel(foundation)
	r.CandidateType, r.Protocol = describeCandidate(candidate)
	return r
}
