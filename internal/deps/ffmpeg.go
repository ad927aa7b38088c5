package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFmpegTool reports where yt-dlp will find an ffmpeg-family tool
// ("ffmpeg" or "ffprobe").
//
// yt-dlp prefers the directory passed through --ffmpeg-location and falls back
// to PATH. This helper mirrors that order so preflight output matches what the
// engine will execute.
func ResolveFFmpegTool(tool, ffmpegDir string) Status {
	result := Status{
		Name:        tool,
		Description: "Used by yt-dlp to merge streams and extract audio",
	}

	name := executableName(tool)
	if dir := strings.TrimSpace(ffmpegDir); dir != "" {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			result.Command = candidate
			result.Available = true
			return result
		}
	}

	if resolved, err := exec.LookPath(name); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}

	result.Command = name
	result.Detail = fmt.Sprintf("binary %q not found", name)
	return result
}

func executableName(tool string) string {
	if runtime.GOOS == "windows" {
		return tool + ".exe"
	}
	return tool
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
