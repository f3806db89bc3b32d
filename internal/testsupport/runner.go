package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mkvsubs/internal/toolexec"
)

// SampleProbeReport is a representative ffprobe stream listing with two text
// subtitle tracks, one bitmap track, a font and a subtitle attachment.
const SampleProbeReport = `Input #0, matroska,webm, from 'movie.mkv':
  Duration: 00:42:00.00, start: 0.000000, bitrate: 4000 kb/s
  Stream #0:0: Video: h264 (High), yuv420p(progressive), 1920x1080 (default)
  Stream #0:1(jpn): Audio: aac (LC), 48000 Hz, stereo, fltp (default)
  Stream #0:2(eng): Subtitle: subrip (default)
  Stream #0:3(chi): Subtitle: ass
  Stream #0:4: Subtitle: hdmv_pgs_subtitle, 1920x1080
  Stream #0:5: Attachment: ttf
    Metadata:
      filename        : Font.ttf
      mimetype        : application/x-truetype-font
  Stream #0:6: Attachment: none
    Metadata:
      filename        : signs.ass
      mimetype        : text/x-ass
`

// SampleSRT is a two-cue SRT document.
const SampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:03,000 --> 00:00:04,500\nWorld\n"

// FakeMediaTools is a toolexec.Runner that imitates ffprobe and ffmpeg.
// ffprobe calls return Report; ffmpeg calls write Outputs[key] to the
// requested destination, where key is the mapped stream ("0:2") for tracks or
// the attachment name for -dump_attachment.
type FakeMediaTools struct {
	Report  string
	Outputs map[string][]byte

	mu    sync.Mutex
	Calls []toolexec.Command
}

// NewFakeMediaTools returns a fake serving SampleProbeReport and SampleSRT for stream 0:2.
func NewFakeMediaTools() *FakeMediaTools {
	return &FakeMediaTools{
		Report: SampleProbeReport,
		Outputs: map[string][]byte{
			"0:2":       []byte(SampleSRT),
			"0:3":       []byte("[Script Info]\n\n[Events]\nFormat: Layer, Start, End, Style, Text\nDialogue: 0,0:00:01.00,0:00:02.00,Default,{\\b1}你好\n"),
			"Font.ttf":  {0x00, 0x01, 0x00, 0x00, 0xFF},
			"signs.ass": []byte("[Script Info]\n\n[Events]\nFormat: Start, End, Text\nDialogue: 0:00:05.00,0:00:06.00,Sign\n"),
		},
	}
}

// Run implements toolexec.Runner.
func (f *FakeMediaTools) Run(_ context.Context, cmd toolexec.Command) (toolexec.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	f.mu.Unlock()

	if strings.Contains(filepath.Base(cmd.Binary), "ffprobe") {
		return toolexec.Result{Diagnostic: f.Report, ExitCode: 1}, nil
	}

	args := cmd.Args
	for i, arg := range args {
		switch {
		case arg == "-map" && i+1 < len(args):
			if data, ok := f.Outputs[args[i+1]]; ok {
				if err := os.WriteFile(args[len(args)-1], data, 0o644); err != nil {
					return toolexec.Result{ExitCode: 1, Diagnostic: err.Error()}, nil
				}
				return toolexec.Result{}, nil
			}
			return toolexec.Result{ExitCode: 1, Diagnostic: "Stream map '" + args[i+1] + "' matches no streams."}, nil
		case strings.HasPrefix(arg, "-dump_attachment:m:filename:") && i+1 < len(args):
			name := strings.TrimPrefix(arg, "-dump_attachment:m:filename:")
			if data, ok := f.Outputs[name]; ok {
				if err := os.WriteFile(args[i+1], data, 0o644); err != nil {
					return toolexec.Result{ExitCode: 1, Diagnostic: err.Error()}, nil
				}
			}
			return toolexec.Result{ExitCode: 1, Diagnostic: "At least one output file must be specified"}, nil
		}
	}
	return toolexec.Result{ExitCode: 1, Diagnostic: "unsupported invocation"}, nil
}

// CallCount returns how many commands ran.
func (f *FakeMediaTools) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
