// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"context"
	"sort"
	"strings"
)

const (
	mediaDevicesTest      = "mediaDevices"
	mediaCapabilitiesTest = "mediaCapabilities"
)

// MediaDevice is one entry of a device enumeration.
type MediaDevice struct {
	Kind     string `json:"kind"`
	DeviceID string `json:"deviceId"`
	GroupID  string `json:"groupId"`
	Label    string `json:"label"`
}

// DeviceEnumerator lists the media devices visible to the page.
type DeviceEnumerator interface {
	EnumerateDevices(ctx context.Context) ([]MediaDevice, error)
}

// VideoConfiguration describes the video stream of a decoding query.
type VideoConfiguration struct {
	ContentType string `json:"contentType"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Bitrate     int    `json:"bitrate"`
	Framerate   int    `json:"framerate"`
}

// AudioConfiguration describes the audio stream of a decoding query.
type AudioConfiguration struct {
	ContentType string `json:"contentType"`
	Channels    int    `json:"channels"`
	Bitrate     int    `json:"bitrate"`
	Samplerate  int    `json:"samplerate"`
}

// MediaConfiguration is a decoding query. Exactly one of Video and Audio is set.
type MediaConfiguration struct {
	Type  string              `json:"type"`
	Video *VideoConfiguration `json:"video,omitempty"`
	Audio *AudioConfiguration `json:"audio,omitempty"`
}

// DecodingInfo is the answer to a decoding query.
type DecodingInfo struct {
	Supported      bool `json:"supported"`
	Smooth         bool `json:"smooth"`
	PowerEfficient bool `json:"powerEfficient"`
}

// DecodingInfoProvider answers decoding queries.
type DecodingInfoProvider interface {
	DecodingInfo(ctx context.Context, config MediaConfiguration) (DecodingInfo, error)
}

// DecodingProbeCodecs are the content types queried by MediaCapabilities.
var DecodingProbeCodecs = []string{
	`audio/ogg; codecs=vorbis`,
	`audio/ogg; codecs=flac`,
	`audio/mp4; codecs="mp4a.40.2"`,
	`audio/mpeg; codecs="mp3"`,
	`video/ogg; codecs="theora"`,
	`video/mp4; codecs="avc1.42E01E"`,
}

func decodingConfiguration(codec string) MediaConfiguration {
	config := MediaConfiguration{Type: "file"}
	switch {
	case strings.HasPrefix(codec, mediaVideo):
		config.Video = &VideoConfiguration{
			ContentType: codec,
			Width:       1920,
			Height:      1080,
			Bitrate:     120000,
			Framerate:   60,
		}
	case strings.HasPrefix(codec, mediaAudio):
		config.Audio = &AudioConfiguration{
			ContentType: codec,
			Channels:    2,
			Bitrate:     300000,
			Samplerate:  5200,
		}
	}
	return config
}

// MediaDevices returns the sorted kinds of the enumerated devices.
func (a *API) MediaDevices(ctx context.Context, e DeviceEnumerator) ([]string, error) {
	var kinds []string
	err := a.runProbe(mediaDevicesTest, func(y yielder) error {
		if e == nil {
			return ErrUnsupported
		}
		if err := y.yield(ctx); err != nil {
			return err
		}

		devices, err := e.EnumerateDevices(ctx)
		if err != nil {
			return err
		}

		kinds = make([]string, 0, len(devices))
		for _, d := range devices {
			kinds = append(kinds, d.Kind)
		}
		sort.Strings(kinds)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return kinds, nil
}

// MediaCapabilities queries DecodingProbeCodecs and maps every supported
// codec to the qualities it is decoded with, "smooth" and "efficient".
// A failed query leaves its codec out.
func (a *API) MediaCapabilities(ctx context.Context, p DecodingInfoProvider) (map[string][]string, error) {
	var capabilities map[string][]string
	err := a.runProbe(mediaCapabilitiesTest, func(y yielder) error {
		if p == nil {
			return ErrUnsupported
		}
		log := a.newLogger("media")

		if err := y.yield(ctx); err != nil {
			return err
		}

		capabilities = map[string][]string{}
		for _, codec := range DecodingProbeCodecs {
			info, err := p.DecodingInfo(ctx, decodingConfiguration(codec))
			if err != nil {
				log.Warnf("decoding query for %s failed: %v", codec, err)
				continue
			}
			if !info.Supported {
				continue
			}

			qualities := []string{}
			if info.Smooth {
				qualities = append(qualities, "smooth")
			}
			if info.PowerEfficient {
				qualities = append(qualities, "efficient")
			}
			capabilities[codec] = qualities
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return capabilities, nil
}
