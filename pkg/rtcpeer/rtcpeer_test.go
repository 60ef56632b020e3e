// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package rtcpeer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pion/fingerprint"
	"github.com/pion/logging"
	"github.com/pion/transport/v4/test"
	"github.com/pion/transport/v4/vnet"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createVNet(t *testing.T) (*vnet.Router, *vnet.Net) {
	t.Helper()

	wan, err := vnet.NewRouter(&vnet.RouterConfig{
		CIDR:          "1.2.3.0/24",
		LoggerFactory: logging.NewDefaultLoggerFactory(),
	})
	require.NoError(t, err)

	net, err := vnet.NewNet(&vnet.NetConfig{
		StaticIPs: []string{"1.2.3.4"},
	})
	require.NoError(t, err)
	require.NoError(t, wan.AddNet(net))
	require.NoError(t, wan.Start())

	return wan, net
}

func TestConfigICEServers(t *testing.T) {
	servers, err := Config{}.iceServers()
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, DefaultICEServers, servers[0].URLs)

	servers, err = Config{ICEServers: []string{}}.iceServers()
	assert.NoError(t, err)
	assert.Empty(t, servers)

	_, err = Config{ICEServers: []string{"stun:stun.l.google.com:19302?transport=udp"}}.iceServers()
	assert.ErrorIs(t, err, errInvalidICEServer)

	_, err = Config{ICEServers: []string{"http://example.com"}}.iceServers()
	assert.ErrorIs(t, err, errInvalidICEServer)
}

func TestPeerResolvesHostAddress(t *testing.T) {
	lim := test.TimeOut(time.Second * 20)
	defer lim.Stop()

	report := test.CheckRoutines(t)
	defer report()

	wan, net := createVNet(t)
	defer func() {
		assert.NoError(t, wan.Stop())
	}()

	peer, err := New(Config{ICEServers: []string{}, Net: net})
	require.NoError(t, err)

	s := fingerprint.SettingEngine{}
	require.NoError(t, s.SetNegotiationTimeout(5*time.Second))
	api := fingerprint.NewAPI(fingerprint.WithSettingEngine(s))

	result, err := api.WebRTC(context.Background(), peer)
	require.NoError(t, err)
	require.False(t, result.Unsupported)

	assert.Equal(t, "1.2.3.4", result.Address)
	assert.True(t, strings.HasPrefix(result.Candidate, "candidate:"))
	assert.Equal(t, "host", result.CandidateType)
	assert.Equal(t, "udp", result.Protocol)
	assert.NotEmpty(t, result.Hash)

	mimeTypes := map[string]bool{}
	for _, d := range append(result.Audio, result.Video...) {
		mimeTypes[d.MimeType] = true
	}
	assert.True(t, mimeTypes["audio/opus"])
	assert.True(t, mimeTypes["video/VP8"])

	rtx := 0
	for _, d := range result.Video {
		if d.MimeType == "video/rtx" {
			rtx++
		}
	}
	assert.LessOrEqual(t, rtx, 1)

	// The probe closes the peer, later offers fail.
	_, err = peer.CreateOffer(context.Background())
	assert.ErrorIs(t, err, errClosed)
}

func TestPeerRemoveDetachesHandler(t *testing.T) {
	peer, err := New(Config{ICEServers: []string{}})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, peer.Close())
	}()

	calls := 0
	remove := peer.OnICECandidate(func(fingerprint.ICECandidateEvent) { calls++ })
	peer.onICECandidate(nil)
	remove()
	peer.onICECandidate(nil)

	assert.Equal(t, 1, calls)
}

func TestPeerReplaysEarlyCandidates(t *testing.T) {
	peer := &Peer{}

	peer.onICECandidate(&webrtc.ICECandidate{
		Foundation: "1",
		Priority:   2130706431,
		Address:    "192.168.1.2",
		Protocol:   webrtc.ICEProtocolUDP,
		Port:       54400,
		Typ:        webrtc.ICECandidateTypeHost,
		Component:  1,
	})
	peer.onICECandidate(nil)

	var events []fingerprint.ICECandidateEvent
	remove := peer.OnICECandidate(func(e fingerprint.ICECandidateEvent) {
		events = append(events, e)
	})

	require.Len(t, events, 2)
	assert.Equal(t, "1", events[0].Foundation)
	assert.True(t, strings.HasPrefix(events[0].Candidate, "candidate:1 1 udp 2130706431 192.168.1.2 54400 typ host"))
	assert.Equal(t, fingerprint.ICECandidateEvent{}, events[1])

	// Nothing is buffered once a handler has been attached.
	remove()
	peer.onICECandidate(nil)
	peer.OnICECandidate(func(e fingerprint.ICECandidateEvent) {
		events = append(events, e)
	})
	assert.Len(t, events, 2)
}
