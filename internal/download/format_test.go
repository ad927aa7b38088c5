package download_test

import (
	"testing"

	"vidqueue/internal/download"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		quality string
		manual  string
		want    string
	}{
		{"1080p video", "video", "1080p", "", "bestvideo[height<=1080]+bestaudio/best"},
		{"best video", "video", "best", "", "bestvideo+bestaudio/best"},
		{"8k", "video", "8k", "", "bestvideo[height<=4320]+bestaudio/best"},
		{"lowest", "video", "lowest", "", "worstvideo+bestaudio/worst"},
		{"audio tier in video mode", "video", "audio", "", "bestaudio/best"},
		{"unknown tier", "video", "9000p", "", "bestvideo+bestaudio/best"},
		{"empty tier", "video", "", "", "bestvideo+bestaudio/best"},
		{"manual selector", "video", "manual", "137+140", "137+140"},
		{"manual without selector", "video", "manual", "  ", "bestvideo+bestaudio/best"},
		{"manual ignored for other tiers", "video", "720p", "137+140", "bestvideo[height<=720]+bestaudio/best"},
		{"audio mode forces audio", "audio", "best", "", "bestaudio/best"},
		{"audio mode beats manual", "audio", "manual", "137+140", "bestaudio/best"},
		{"audio bitrate tier", "audio", "audio_320", "", "bestaudio/best"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := download.ResolveFormat(tt.mode, tt.quality, tt.manual); got != tt.want {
				t.Fatalf("ResolveFormat(%q, %q, %q) = %q, want %q", tt.mode, tt.quality, tt.manual, got, tt.want)
			}
		})
	}
}

func TestAudioBitrate(t *testing.T) {
	if got := download.AudioBitrate("audio_320"); got != "320K" {
		t.Fatalf("unexpected bitrate %q", got)
	}
	if got := download.AudioBitrate("audio_128"); got != "128K" {
		t.Fatalf("unexpected bitrate %q", got)
	}
	if got := download.AudioBitrate("best"); got != "" {
		t.Fatalf("expected no bitrate for video tier, got %q", got)
	}
}

func TestQualitiesAllResolve(t *testing.T) {
	for _, q := range download.Qualities() {
		if q == download.QualityManual {
			continue
		}
		if download.ResolveFormat("video", q, "") == "" {
			t.Fatalf("tier %q resolved to empty selector", q)
		}
	}
}
