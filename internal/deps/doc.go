// Package deps reports whether the external binaries vidqueue shells out to
// (yt-dlp, ffmpeg, ffprobe) are installed and which version answers.
package deps
