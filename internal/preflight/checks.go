package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"

	"vidqueue/internal/config"
	"vidqueue/internal/credentials"
	"vidqueue/internal/deps"
	"vidqueue/internal/naming"
)

// MinFreeBytes is the free-space floor below which the save directory check fails.
const MinFreeBytes = 2 << 30

const (
	credentialCheckTimeout = 10 * time.Second
	aiCheckTimeout         = 60 * time.Second
)

// Prober re-tests the configured language models.
type Prober interface {
	Probe(ctx context.Context) naming.Status
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// FreeSpace returns free and total bytes on the filesystem holding path.
func FreeSpace(ctx context.Context, path string) (free, total uint64, err error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, 0, fmt.Errorf("disk usage for %s: %w", path, err)
	}
	return usage.Free, usage.Total, nil
}

// CheckDiskSpace fails when the filesystem holding path has less than minFree
// bytes available.
func CheckDiskSpace(ctx context.Context, name, path string, minFree uint64) Result {
	free, total, err := FreeSpace(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	detail := fmt.Sprintf("%s free of %s", humanize.IBytes(free), humanize.IBytes(total))
	if free < minFree {
		return Result{Name: name, Detail: fmt.Sprintf("%s (below %s)", detail, humanize.IBytes(minFree))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external binaries the downloader needs. Both
// the server and the CLI use this to avoid duplicating the requirements list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	results := deps.CheckBinaries(ctx, []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.DownloaderBinary(),
			Description: "Required for metadata and downloads",
			VersionArg:  "--version",
		},
	})
	results = append(results, deps.ResolveFFmpegTool("ffmpeg", cfg.Paths.FFmpegDir))
	ffprobe := deps.ResolveFFmpegTool("ffprobe", cfg.Paths.FFmpegDir)
	ffprobe.Optional = true
	results = append(results, ffprobe)
	return results
}

// CheckCredentialStore verifies the login store can be read.
func CheckCredentialStore(ctx context.Context, source credentials.Source) Result {
	const name = "Credential store"
	checkCtx, cancel := context.WithTimeout(ctx, credentialCheckTimeout)
	defer cancel()

	records, err := source.Records(checkCtx)
	if err != nil {
		if errors.Is(err, credentials.ErrMissing) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (missing)", source.Describe())}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", source.Describe(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d records)", source.Describe(), len(records))}
}

// CheckAI re-probes the language models. An unavailable assistant is
// reported but the downloader still works with sanitized titles.
func CheckAI(ctx context.Context, prober Prober) Result {
	const name = "AI renaming"
	checkCtx, cancel := context.WithTimeout(ctx, aiCheckTimeout)
	defer cancel()

	status := prober.Probe(checkCtx)
	if !status.Available {
		return Result{Name: name, Detail: "no working key/model pair (titles will be sanitized instead)"}
	}
	return Result{Name: name, Passed: true, Detail: "using " + status.Model}
}

func fromDependency(status deps.Status) Result {
	detail := status.Command
	if status.Version != "" {
		detail = fmt.Sprintf("%s (%s)", status.Command, status.Version)
	}
	if !status.Available {
		detail = status.Detail
		if status.Optional {
			return Result{Name: status.Name, Passed: true, Detail: strings.TrimSpace(detail + " (optional)")}
		}
	}
	return Result{Name: status.Name, Passed: status.Available, Detail: detail}
}
