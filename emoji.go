// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import "math"

// EmojiFontFamily is the CSS font stack the glyphs are rendered in. Glyph
// widths are only comparable across visits when this stack is fixed.
const EmojiFontFamily = `'Segoe Fluent Icons','Ink Free','Bahnschrift','Segoe MDL2 Assets',` +
	`'HoloLens MDL2 Assets','Leelawadee UI','Javanese Text','Segoe UI Emoji','Aldhabi',` +
	`'Gadugi','Myanmar Text','Nirmala UI','Lucida Console','Cambria Math','Galvji',` +
	`'MuktaMahee Regular','InaiMathi Bold','American Typewriter Semibold','Futura Bold',` +
	`'SignPainter-HouseScript Semibold','PingFang HK Light','Kohinoor Devanagari Medium',` +
	`'Luminari','Geneva','Helvetica Neue','Droid Sans Mono','Roboto','Ubuntu',` +
	`'Noto Color Emoji',emoji,sans-serif`

// Emojis is the fixed, ordered glyph list rendered for the glyph signature.
var Emojis = func() []string {
	codePoints := [][]rune{
		{128512}, {9786}, {129333, 8205, 9794, 65039}, {9832}, {9784}, {9895}, {8265}, {8505},
		{127987, 65039, 8205, 9895, 65039}, {129394}, {9785}, {9760}, {129489, 8205, 129456},
		{129487, 8205, 9794, 65039}, {9975}, {129489, 8205, 129309, 8205, 129489}, {9752},
		{9968}, {9961}, {9972}, {9992}, {9201}, {9928}, {9730}, {9969}, {9731}, {9732},
		{9976}, {9823}, {9937}, {9000}, {9993}, {9999},
		{128105, 8205, 10084, 65039, 8205, 128139, 8205, 128104},
		{128104, 8205, 128105, 8205, 128103, 8205, 128102},
		{128104, 8205, 128105, 8205, 128102},
		{128512}, {169}, {174}, {8482}, {128065, 65039, 8205, 128488, 65039},
		{10002}, {9986}, {9935}, {9874}, {9876}, {9881}, {9939}, {9879}, {9904}, {9905},
		{9888}, {9762}, {9763}, {11014}, {8599}, {10145}, {11013}, {9883}, {10017}, {10013},
		{9766}, {9654}, {9197}, {9199}, {9167}, {9792}, {9794}, {10006}, {12336}, {9877},
		{9884}, {10004}, {10035}, {10055}, {9724}, {9642}, {10083}, {10084}, {9996}, {9757},
		{9997}, {10052}, {9994}, {128178}, {128172}, {9729}, {9748}, {9889}, {9924}, {9749},
		{10068}, {10069}, {10067}, {10071}, {9978}, {9196}, {9195},
	}

	emojis := make([]string, len(codePoints))
	for i, cp := range codePoints {
		emojis[i] = string(cp)
	}
	return emojis
}()

// glyphSignature keeps the first glyph seen for each distinct (width,
// height) pair and sums the distinct dimensions, scaled down.
func glyphSignature(glyphs []string, rects []Rect) ([]string, float64) {
	seen := map[string]struct{}{}
	set := []string{}
	var total float64

	for i, rect := range rects {
		if i >= len(glyphs) {
			break
		}
		dimensions := jsNumber(rect.Width) + "," + jsNumber(rect.Height)
		if _, ok := seen[dimensions]; ok {
			continue
		}
		seen[dimensions] = struct{}{}
		set = append(set, glyphs[i])
		total += finiteOrZero(rect.Width) + finiteOrZero(rect.Height)
	}

	return set, 0.00001 * total
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
