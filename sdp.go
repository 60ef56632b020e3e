// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pion/logging"
	"github.com/pion/sdp/v3"
)

const (
	mediaAudio = "audio"
	mediaVideo = "video"

	addressPlaceholder = "0.0.0.0"
)

var (
	videoLineRegexp      = regexp.MustCompile(`m=video [^\s]+ [^\s]+ ([^\n|\r]+)`)
	audioLineRegexp      = regexp.MustCompile(`m=audio [^\s]+ [^\s]+ ([^\n|\r]+)`)
	lineKeyRegexp        = regexp.MustCompile(`[^\s]+ `)
	payloadLineRegexp    = regexp.MustCompile(`(rtpmap|fmtp|rtcp-fb):([^\s]+) [^\r\n]+`)
	extmapRegexp         = regexp.MustCompile(`extmap:\d+ [^\n|\r]+`)
	extmapPrefixRegexp   = regexp.MustCompile(`extmap:[^\s]+ `)
	connectionLineRegexp = regexp.MustCompile(`(?i)c=IN\s[^\r\n]+\s`)
	candidateLineRegexp  = regexp.MustCompile(`(?i)(udp|tcp)\s\w+\s([\w.:]+)\s`)
)

// CodecDescriptor is one negotiated codec of a media type.
type CodecDescriptor struct {
	MimeType        string   `json:"mimeType"`
	ClockRates      []int    `json:"clockRates"`
	Channels        int      `json:"channels,omitempty"`
	SDPFmtpLine     []string `json:"sdpFmtpLine,omitempty"`
	FeedbackSupport []string `json:"feedbackSupport,omitempty"`
}

// Capabilities are the codec descriptors of an offer, per media type.
type Capabilities struct {
	Audio []CodecDescriptor `json:"audio"`
	Video []CodecDescriptor `json:"video"`
}

// ParseCapabilities reduces the payload types listed on the audio and video
// media lines of a session description into codec descriptors. Payload types
// advertising the same mime type are reported once.
func ParseCapabilities(session string) Capabilities {
	lines := payloadLines(session)
	return Capabilities{
		Audio: reduceDescriptors(mediaAudio, lines, mediaFormats(audioLineRegexp, session)),
		Video: reduceDescriptors(mediaVideo, lines, mediaFormats(videoLineRegexp, session)),
	}
}

// payloadLines indexes the rtpmap, fmtp and rtcp-fb attributes by payload
// type, in document order.
func payloadLines(session string) map[string][]string {
	lines := map[string][]string{}
	for _, m := range payloadLineRegexp.FindAllStringSubmatch(session, -1) {
		lines[m[2]] = append(lines[m[2]], m[0])
	}
	return lines
}

func mediaFormats(line *regexp.Regexp, session string) []string {
	m := line.FindStringSubmatch(session)
	if m == nil {
		return nil
	}
	return strings.Split(m[1], " ")
}

func reduceDescriptors(media string, payloads map[string][]string, formats []string) []CodecDescriptor {
	var (
		descriptors []CodecDescriptor
		rtxSeen     bool
	)

	for _, format := range formats {
		if format == "" {
			continue
		}

		lines := payloads[format]
		if len(lines) == 0 {
			continue
		}

		isRTX := strings.Contains(strings.Join(lines, ","), " rtx/")
		if isRTX {
			if rtxSeen {
				continue
			}
			rtxSeen = true
		}

		descriptors = mergeDescriptor(descriptors, buildDescriptor(media, lines, isRTX))
	}

	return descriptors
}

func buildDescriptor(media string, lines []string, isRTX bool) CodecDescriptor {
	d := CodecDescriptor{}

	for _, line := range lines {
		data := replaceFirst(lineKeyRegexp, line)

		switch {
		case strings.HasPrefix(line, "rtpmap"):
			parts := strings.Split(data, "/")
			d.MimeType = media + "/" + parts[0]
			d.ClockRates = nil
			if len(parts) > 1 {
				if rate, err := strconv.Atoi(parts[1]); err == nil {
					d.ClockRates = []int{rate}
				}
			}
			if media == mediaAudio {
				d.Channels = 1
				if len(parts) > 2 {
					if channels, err := strconv.Atoi(parts[2]); err == nil && channels != 0 {
						d.Channels = channels
					}
				}
			}
		case strings.HasPrefix(line, "rtcp-fb"):
			d.FeedbackSupport = unionStrings(d.FeedbackSupport, []string{data})
		case isRTX:
		default:
			d.SDPFmtpLine = unionStrings(nil, strings.Split(data, ";"))
		}
	}

	return d
}

// replaceFirst removes the leftmost match of re from s.
func replaceFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

// mergeDescriptor unions d into the first descriptor sharing its mime type,
// or appends it.
func mergeDescriptor(descriptors []CodecDescriptor, d CodecDescriptor) []CodecDescriptor {
	for i := range descriptors {
		existing := &descriptors[i]
		if existing.MimeType != d.MimeType {
			continue
		}

		existing.ClockRates = unionInts(existing.ClockRates, d.ClockRates)
		existing.FeedbackSupport = unionStrings(existing.FeedbackSupport, d.FeedbackSupport)
		existing.SDPFmtpLine = unionStrings(existing.SDPFmtpLine, d.SDPFmtpLine)
		return descriptors
	}

	return append(descriptors, d)
}

func unionInts(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	var out []int
	for _, v := range append(append([]int{}, a...), b...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, v := range append(append([]string{}, a...), b...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ParseExtensions returns the sorted, deduplicated header extension URIs.
func ParseExtensions(session string) []string {
	seen := map[string]struct{}{}
	extensions := []string{}
	for _, line := range extmapRegexp.FindAllString(session, -1) {
		ext := replaceFirst(extmapPrefixRegexp, line)
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

// ExtractAddress returns the connection address of a session description,
// falling back to the first candidate line. The unspecified address counts
// as absent and yields "".
func ExtractAddress(session string) string {
	if line := connectionLineRegexp.FindString(session); line != "" {
		fields := strings.Split(strings.TrimSpace(line), " ")
		if len(fields) > 2 && fields[2] != "" && fields[2] != addressPlaceholder {
			return fields[2]
		}
	}

	if m := candidateLineRegexp.FindStringSubmatch(session); m != nil && m[2] != addressPlaceholder {
		return m[2]
	}
	return ""
}

// checkSessionDescription reports session text the sdp package cannot parse.
// The line grammar above is applied regardless.
func checkSessionDescription(session string, log logging.LeveledLogger) {
	parsed := &sdp.SessionDescription{}
	if err := parsed.UnmarshalString(session); err != nil {
		log.Warnf("session description failed structural check: %v", err)
		return
	}
	log.Debugf("session description carries %d media sections", len(parsed.MediaDescriptions))
}
