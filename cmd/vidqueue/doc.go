// Command vidqueue runs the download server and offers helpers for the
// operator: printing the device id, producing credential lines, starting and
// watching runs on a running server, reading its logs and checking that
// yt-dlp and ffmpeg are usable.
package main
