// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/pion/fingerprint"
	"github.com/pion/fingerprint/pkg/jsprobe"
	"github.com/sclevine/agouti"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startChrome(t *testing.T) *agouti.Page {
	t.Helper()

	driver := agouti.ChromeDriver(
		agouti.ChromeOptions(
			"args", []string{
				"--headless",
				"--no-sandbox",
				"--use-gl=swiftshader",
			},
		),
	)
	require.NoError(t, driver.Start(), "Failed to start WebDriver")
	t.Cleanup(func() {
		assert.NoError(t, driver.Stop())
	})

	page, err := driver.NewPage()
	require.NoError(t, err, "Failed to open page")
	require.NoError(t, page.SetPageLoad(1000))
	require.NoError(t, page.Navigate("about:blank"))

	return page
}

func TestE2E(t *testing.T) {
	page := startChrome(t)
	eval := jsprobe.NewWebDriverEvaluator(page)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := jsprobe.DetectInterception(ctx, eval)
	require.NoError(t, err)
	assert.Empty(t, report, "unmodified Chrome should expose native APIs")

	ledger := &fingerprint.LieLedger{}
	api := fingerprint.NewAPI(
		fingerprint.WithLieRecorder(ledger),
		fingerprint.WithInterceptionReport(report),
	)

	t.Run("ClientRects", func(t *testing.T) {
		layout, err := jsprobe.NewLayout(ctx, eval)
		require.NoError(t, err)
		assert.Equal(t, fingerprint.EngineFamilyBlink, layout.EngineFamily())

		first, err := api.ClientRects(ctx, layout)
		require.NoError(t, err)
		second, err := api.ClientRects(ctx, layout)
		require.NoError(t, err)

		assert.Len(t, first.ElementClientRects, 12)
		assert.NotEmpty(t, first.EmojiSet)
		assert.Equal(t, first.Hash, second.Hash)

		if !first.Lied {
			for _, r := range first.ElementClientRects {
				assert.True(t, r.Consistent())
			}
		}

		var mounted bool
		require.NoError(t, eval.Evaluate(ctx, `!!document.querySelector('[id$="-client-rects-div"]')`, &mounted))
		assert.False(t, mounted, "probe scaffolding must be removed")
	})

	t.Run("WebGL", func(t *testing.T) {
		graphics, err := jsprobe.NewGraphics(eval)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, graphics.Release(ctx))
		}()

		result, err := api.WebGL(ctx, graphics)
		if err != nil {
			assert.ErrorIs(t, err, fingerprint.ErrNoGraphicsContext)
			t.Skip("no WebGL in this browser")
		}

		assert.False(t, result.Lied)
		assert.NotEmpty(t, result.Parameters)
		assert.True(t, result.DataURI.Valid)
		assert.NotEmpty(t, result.Hash)
	})

	t.Run("MediaCapabilities", func(t *testing.T) {
		capabilities, err := api.MediaCapabilities(ctx, jsprobe.NewMedia(eval))
		require.NoError(t, err)
		assert.NotNil(t, capabilities)
	})
}
