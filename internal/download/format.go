package download

import "strings"

// Modes accepted in Request.Mode.
const (
	ModeVideo = "video"
	ModeAudio = "audio"
)

// QualityManual selects Request.ManualFormat verbatim.
const QualityManual = "manual"

const (
	defaultSelector = "bestvideo+bestaudio/best"
	audioSelector   = "bestaudio/best"
)

// qualityTiers maps the quality names offered on the page to yt-dlp format
// selectors.
var qualityTiers = map[string]string{
	"best":      "bestvideo+bestaudio/best",
	"8k":        "bestvideo[height<=4320]+bestaudio/best",
	"4k":        "bestvideo[height<=2160]+bestaudio/best",
	"2k":        "bestvideo[height<=1440]+bestaudio/best",
	"1080p":     "bestvideo[height<=1080]+bestaudio/best",
	"720p":      "bestvideo[height<=720]+bestaudio/best",
	"480p":      "bestvideo[height<=480]+bestaudio/best",
	"360p":      "bestvideo[height<=360]+bestaudio/best",
	"lowest":    "worstvideo+bestaudio/worst",
	"audio":     audioSelector,
	"audio_320": audioSelector,
	"audio_128": audioSelector,
}

// audioBitrates holds the extraction bitrate for the fixed-bitrate audio tiers.
var audioBitrates = map[string]string{
	"audio_320": "320K",
	"audio_128": "128K",
}

// ResolveFormat returns the format selector for a request. Audio mode always
// wins; otherwise a non-empty manual selector is used when quality is
// "manual"; otherwise the tier table applies, with unknown tiers treated as
// "best".
func ResolveFormat(mode, quality, manual string) string {
	if strings.EqualFold(strings.TrimSpace(mode), ModeAudio) {
		return audioSelector
	}
	quality = strings.TrimSpace(quality)
	if quality == QualityManual {
		if manual = strings.TrimSpace(manual); manual != "" {
			return manual
		}
	}
	if selector, ok := qualityTiers[strings.ToLower(quality)]; ok {
		return selector
	}
	return defaultSelector
}

// AudioBitrate returns the extraction bitrate for quality, or "" to let the
// engine pick.
func AudioBitrate(quality string) string {
	return audioBitrates[strings.ToLower(strings.TrimSpace(quality))]
}

// Qualities lists the tier names in display order.
func Qualities() []string {
	return []string{"best", "8k", "4k", "2k", "1080p", "720p", "480p", "360p", "lowest", "audio", "audio_320", "audio_128", QualityManual}
}
