// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package rtcpeer provides a fingerprint.Negotiator backed by a Pion
// PeerConnection.
package rtcpeer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pion/fingerprint"
	"github.com/pion/interceptor"
	"github.com/pion/logging"
	"github.com/pion/stun/v3"
	"github.com/pion/transport/v4"
	"github.com/pion/webrtc/v4"
)

var (
	errInvalidICEServer = errors.New("invalid ICE server URI")
	errClosed           = errors.New("negotiator closed")
)

// DefaultICEServers are used when Config.ICEServers is nil.
var DefaultICEServers = []string{ // nolint:gochecknoglobals
	"stun:stun4.l.google.com:19302",
	"stun:stun3.l.google.com:19302",
}

// Config configures a Peer.
type Config struct {
	// ICEServers are STUN or TURN URIs. nil selects DefaultICEServers, an
	// empty slice gathers host candidates only.
	ICEServers []string

	// Net replaces the operating system network, e.g. with a vnet.Net.
	Net transport.Net

	// ICETimeout bounds connectivity checks. Zero keeps the Pion default.
	ICETimeout time.Duration

	LoggerFactory logging.LoggerFactory
}

func (c Config) iceServers() ([]webrtc.ICEServer, error) {
	urls := c.ICEServers
	if urls == nil {
		urls = DefaultICEServers
	}
	if len(urls) == 0 {
		return nil, nil
	}

	for _, u := range urls {
		if _, err := stun.ParseURI(u); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errInvalidICEServer, u, err)
		}
	}
	return []webrtc.ICEServer{{URLs: urls}}, nil
}

// Peer offers a data channel and receive-only audio and video so that the
// local description advertises the full default codec set.
type Peer struct {
	pc  *webrtc.PeerConnection
	log logging.LeveledLogger

	// deliver serializes handler calls, including the replay of events
	// gathered before the first handler was attached.
	deliver sync.Mutex

	mu       sync.Mutex
	handler  func(fingerprint.ICECandidateEvent)
	attached bool
	pending  []fingerprint.ICECandidateEvent
	closed   bool
}

// New creates a Peer.
func New(cfg Config) (*Peer, error) {
	servers, err := cfg.iceServers()
	if err != nil {
		return nil, err
	}

	loggerFactory := cfg.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	mediaEngine := &webrtc.MediaEngine{}
	if err = mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	// The default interceptors add the feedback and header extensions a
	// browser offer carries.
	registry := &interceptor.Registry{}
	if err = webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, err
	}

	settingEngine := webrtc.SettingEngine{LoggerFactory: loggerFactory}
	if cfg.Net != nil {
		settingEngine.SetNet(cfg.Net)
	}
	if cfg.ICETimeout > 0 {
		settingEngine.SetICETimeouts(cfg.ICETimeout, cfg.ICETimeout, cfg.ICETimeout/5)
	}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(registry),
		webrtc.WithSettingEngine(settingEngine),
	)

	pc, err := api.NewPeerConnection(webrtc.Configuration{
		ICEServers:           servers,
		ICECandidatePoolSize: 1,
	})
	if err != nil {
		return nil, err
	}

	p := &Peer{pc: pc, log: loggerFactory.NewLogger("rtcpeer")}
	pc.OnICECandidate(p.onICECandidate)

	if err = p.addMedia(); err != nil {
		if closeErr := pc.Close(); closeErr != nil {
			p.log.Warnf("failed to close peer connection: %v", closeErr)
		}
		return nil, err
	}

	return p, nil
}

func (p *Peer) addMedia() error {
	if _, err := p.pc.CreateDataChannel("", nil); err != nil {
		return err
	}

	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeAudio, webrtc.RTPCodecTypeVideo} {
		if _, err := p.pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Peer) onICECandidate(c *webrtc.ICECandidate) {
	event := fingerprint.ICECandidateEvent{}
	if c != nil {
		event.Candidate = c.ToJSON().Candidate
		event.Foundation = c.Foundation
	}

	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	handler := p.handler
	if handler == nil && !p.attached && !p.closed {
		p.pending = append(p.pending, event)
	}
	p.mu.Unlock()

	if handler != nil {
		handler(event)
	}
}

// CreateOffer creates an offer and applies it as the local description,
// which starts gathering.
func (p *Peer) CreateOffer(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return "", errClosed
	}

	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return "", err
	}
	if err = p.pc.SetLocalDescription(offer); err != nil {
		return "", err
	}
	return offer.SDP, nil
}

// LocalDescription returns the current local session text.
func (p *Peer) LocalDescription() string {
	desc := p.pc.LocalDescription()
	if desc == nil {
		return ""
	}
	return desc.SDP
}

// OnICECandidate sets the candidate handler, replacing any previous one.
// Events gathered before the first handler was set are replayed to it.
func (p *Peer) OnICECandidate(handler func(fingerprint.ICECandidateEvent)) (remove func()) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	p.handler = handler
	p.attached = true
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if handler != nil {
		for _, event := range pending {
			handler(event)
		}
	}

	return func() {
		p.mu.Lock()
		p.handler = nil
		p.mu.Unlock()
	}
}

// Close closes the underlying PeerConnection. Later calls are no-ops.
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.handler = nil
	p.pending = nil
	p.mu.Unlock()

	return p.pc.Close()
}
