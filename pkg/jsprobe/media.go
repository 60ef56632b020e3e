// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsprobe

import (
	"context"
	"errors"

	"github.com/pion/fingerprint"
)

// Media is a fingerprint.DeviceEnumerator and fingerprint.DecodingInfoProvider
// backed by navigator.mediaDevices and navigator.mediaCapabilities.
type Media struct {
	c caller
}

// NewMedia returns a Media for the page evaluated by eval.
func NewMedia(eval Evaluator) *Media {
	return &Media{c: caller{eval: eval}}
}

// EnumerateDevices implements fingerprint.DeviceEnumerator.
func (m *Media) EnumerateDevices(ctx context.Context) ([]fingerprint.MediaDevice, error) {
	var devices []fingerprint.MediaDevice
	err := m.c.call(ctx, &devices, "enumerateDevices")
	if errors.Is(err, errUndefined) {
		return nil, fingerprint.ErrUnsupported
	}
	return devices, err
}

// DecodingInfo implements fingerprint.DecodingInfoProvider.
func (m *Media) DecodingInfo(ctx context.Context, config fingerprint.MediaConfiguration) (fingerprint.DecodingInfo, error) {
	var info fingerprint.DecodingInfo
	err := m.c.call(ctx, &info, "decodingInfo", config)
	if errors.Is(err, errUndefined) {
		return info, fingerprint.ErrUnsupported
	}
	return info, err
}
