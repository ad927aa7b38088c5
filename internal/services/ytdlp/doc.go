// Package ytdlp drives the yt-dlp media engine through github.com/lrstanley/go-ytdlp.
//
// Client resolves titles without downloading and performs downloads with a
// format selector, output template, and optional audio extraction. Errors are
// tagged with services.ErrExternalTool and carry the last ERROR line yt-dlp
// printed so callers can surface it verbatim.
package ytdlp
