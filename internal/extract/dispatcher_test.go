package extract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"mkvsubs/internal/media/ffprobe"
	"mkvsubs/internal/services"
	"mkvsubs/internal/staging"
	"mkvsubs/internal/toolexec"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,500\nHello\n"

type step func(cmd toolexec.Command) (toolexec.Result, error)

type scriptedRunner struct {
	t     *testing.T
	steps []step
	calls []toolexec.Command
}

func (s *scriptedRunner) Run(_ context.Context, cmd toolexec.Command) (toolexec.Result, error) {
	idx := len(s.calls)
	s.calls = append(s.calls, cmd)
	if idx >= len(s.steps) {
		s.t.Fatalf("unexpected extra call %d: %s", idx+1, cmd.String())
	}
	return s.steps[idx](cmd)
}

// writeLastArg writes data to the command's final argument (the track output path).
func writeLastArg(t *testing.T, data []byte, exitCode int) step {
	return func(cmd toolexec.Command) (toolexec.Result, error) {
		out := cmd.Args[len(cmd.Args)-1]
		if err := os.WriteFile(out, data, 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
		return toolexec.Result{ExitCode: exitCode, Diagnostic: "At least one output file must be specified"}, nil
	}
}

// writeDumpTarget writes data to the path following -dump_attachment:m:filename:<name>.
func writeDumpTarget(t *testing.T, data []byte) step {
	return func(cmd toolexec.Command) (toolexec.Result, error) {
		for i, arg := range cmd.Args {
			if strings.HasPrefix(arg, "-dump_attachment:m:filename:") {
				if err := os.WriteFile(cmd.Args[i+1], data, 0o644); err != nil {
					t.Fatalf("write output: %v", err)
				}
				return toolexec.Result{ExitCode: 1}, nil
			}
		}
		t.Fatalf("no dump target in %v", cmd.Args)
		return toolexec.Result{}, nil
	}
}

func fail(diagnostic string) step {
	return func(toolexec.Command) (toolexec.Result, error) {
		return toolexec.Result{ExitCode: 1, Diagnostic: diagnostic}, nil
	}
}

func newTestDispatcher(t *testing.T, runner toolexec.Runner, opts ...Option) (*Dispatcher, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{
		WithRunner(runner),
		WithClock(func() time.Time { return time.UnixMilli(1700000000123) }),
	}, opts...)
	d := NewDispatcher(dir, opts...)
	d.newID = func() string { return "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0" }
	return d, dir
}

func TestExtractTrackNonZeroExitWithOutputIsSuccess(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{writeLastArg(t, []byte(sampleSRT), 1)}
	d, dir := newTestDispatcher(t, runner)

	res, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 3, "subrip")
	if err != nil {
		t.Fatalf("ExtractTrack: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected no fallback, got %d calls", len(runner.calls))
	}
	if res.Text != sampleSRT || res.Format != FormatSRT {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := filepath.Join(dir, "subtitle_1700000000123_0f1e2d3c.srt")
	if res.Path != want {
		t.Fatalf("path = %q, want %q", res.Path, want)
	}
	args := runner.calls[0].Args
	if !slices.Contains(args, "0:3") || !slices.Contains(args, "srt") {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestExtractTrackOutputNameIsUnique(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{writeLastArg(t, []byte(sampleSRT), 0)}
	d := NewDispatcher(t.TempDir(), WithRunner(runner))

	res, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 2, "srt")
	if err != nil {
		t.Fatalf("ExtractTrack: %v", err)
	}
	if !regexp.MustCompile(`subtitle_\d+_[0-9a-f]{8}\.srt$`).MatchString(res.Path) {
		t.Fatalf("unexpected output name %q", res.Path)
	}
}

func TestExtractTrackASSUsesCopy(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{writeLastArg(t, []byte("[Script Info]\n"), 0)}
	d, _ := newTestDispatcher(t, runner)

	res, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 5, "ass (default)")
	if err != nil {
		t.Fatalf("ExtractTrack: %v", err)
	}
	if res.Format != FormatASS || filepath.Ext(res.Path) != ".ass" {
		t.Fatalf("unexpected result: %+v", res)
	}
	args := runner.calls[0].Args
	i := slices.Index(args, "-c:s")
	if i < 0 || args[i+1] != "copy" {
		t.Fatalf("expected codec copy, got %v", args)
	}
	if j := slices.Index(args, "-map"); j < 0 || args[j+1] != "0:5" {
		t.Fatalf("expected verbatim container index, got %v", args)
	}
}

func TestExtractTrackFallsBackToAlternateSyntax(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{
		fail("Unknown encoder 'srt'"),
		writeLastArg(t, []byte(sampleSRT), 0),
	}
	d, _ := newTestDispatcher(t, runner)

	res, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 2, "subrip")
	if err != nil {
		t.Fatalf("ExtractTrack: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected fallback call, got %d", len(runner.calls))
	}
	if !slices.Contains(runner.calls[1].Args, "-f") {
		t.Fatalf("alternate variant should use -f: %v", runner.calls[1].Args)
	}
	if res.Command != runner.calls[1].String() {
		t.Fatalf("command = %q", res.Command)
	}
}

func TestExtractTrackEmptyOutputTriggersFallback(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{
		writeLastArg(t, nil, 0),
		writeLastArg(t, []byte(sampleSRT), 0),
	}
	d, _ := newTestDispatcher(t, runner)

	if _, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 2, "srt"); err != nil {
		t.Fatalf("ExtractTrack: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(runner.calls))
	}
}

func TestExtractTrackAllVariantsFail(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{
		fail("Stream map '0:9' matches no streams."),
		fail("Stream map '0:9' matches no streams."),
	}
	d, _ := newTestDispatcher(t, runner)

	_, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 9, "srt")
	if err == nil {
		t.Fatal("expected error")
	}
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *ExtractionError, got %T: %v", err, err)
	}
	if len(extractErr.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(extractErr.Attempts))
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool match")
	}
	if !strings.Contains(extractErr.Hint(), "stream index does not exist") {
		t.Fatalf("unexpected hint %q", extractErr.Hint())
	}
	if !strings.Contains(err.Error(), "matches no streams") {
		t.Fatalf("error should quote diagnostic: %v", err)
	}
}

func TestExtractTrackStartFailureFallsThrough(t *testing.T) {
	runner := &scriptedRunner{t: t}
	startErr := errors.New("exec: \"ffmpeg\": executable file not found in $PATH")
	runner.steps = []step{
		func(toolexec.Command) (toolexec.Result, error) { return toolexec.Result{ExitCode: -1}, startErr },
		func(toolexec.Command) (toolexec.Result, error) { return toolexec.Result{ExitCode: -1}, startErr },
	}
	d, _ := newTestDispatcher(t, runner)

	_, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 2, "srt")
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if !errors.Is(extractErr.Attempts[0].Err, startErr) {
		t.Fatalf("attempt should carry the start error")
	}
}

func TestExtractTrackTimeoutSkipsFallback(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{
		func(cmd toolexec.Command) (toolexec.Result, error) {
			return toolexec.Result{ExitCode: -1}, &toolexec.TimeoutError{Command: cmd.String(), Timeout: time.Second}
		},
	}
	d, _ := newTestDispatcher(t, runner)

	_, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 2, "srt")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		t.Fatal("timeout must not be reported as ExtractionError")
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(runner.calls))
	}
}

func TestExtractTrackDecodesFallbackCharset(t *testing.T) {
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String("1\n00:00:01,000 --> 00:00:02,000\n你好\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	runner := &scriptedRunner{t: t}
	runner.steps = []step{writeLastArg(t, []byte(encoded), 0)}
	d, _ := newTestDispatcher(t, runner, WithFallbackEncoding("gb18030"))

	res, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 2, "srt")
	if err != nil {
		t.Fatalf("ExtractTrack: %v", err)
	}
	if !strings.Contains(res.Text, "你好") || res.Encoding != "gb18030" {
		t.Fatalf("unexpected decode: %+v", res)
	}
}

func TestExtractTrackRejectsOversizedOutput(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{writeLastArg(t, []byte(sampleSRT), 0)}
	d, _ := newTestDispatcher(t, runner, WithMaxFileBytes(4))

	_, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 2, "srt")
	if !errors.Is(err, services.ErrOutputLimit) {
		t.Fatalf("expected output limit error, got %v", err)
	}
}

func TestExtractTrackValidation(t *testing.T) {
	runner := &scriptedRunner{t: t}
	d, _ := newTestDispatcher(t, runner)

	if _, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", -1, "srt"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for negative index, got %v", err)
	}
	if _, err := d.ExtractTrack(context.Background(), "", 1, "srt"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty path, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("validation failures must not run ffmpeg")
	}
}

func TestExtractAttachmentFontReturnsRawBytes(t *testing.T) {
	font := []byte{0x00, 0x01, 0x00, 0x00, 0xFF, 0xFE, 0x80}
	runner := &scriptedRunner{t: t}
	runner.steps = []step{writeDumpTarget(t, font)}
	d, dir := newTestDispatcher(t, runner)

	res, err := d.ExtractAttachment(context.Background(), "/media/movie.mkv", "Arial.ttf")
	if err != nil {
		t.Fatalf("ExtractAttachment: %v", err)
	}
	if !bytes.Equal(res.Data, font) || res.Text != "" || !res.IsFont || res.IsSubtitle {
		t.Fatalf("unexpected font result: %+v", res)
	}
	wantDir := filepath.Join(dir, staging.AttachmentsDir, "1700000000123-0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0")
	if filepath.Dir(res.Path) != wantDir || filepath.Base(res.Path) != "Arial.ttf" {
		t.Fatalf("unexpected path %q", res.Path)
	}
	args := runner.calls[0].Args
	if slices.Index(args, "-dump_attachment:m:filename:Arial.ttf") > slices.Index(args, "-i") {
		t.Fatalf("dump option must precede the input: %v", args)
	}
}

func TestOutputsAreVisibleToStagingSweep(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{
		writeLastArg(t, []byte(sampleSRT), 0),
		writeDumpTarget(t, []byte{0x00, 0x01}),
	}
	d, dir := newTestDispatcher(t, runner)

	track, err := d.ExtractTrack(context.Background(), "/media/movie.mkv", 2, FormatSRT)
	if err != nil {
		t.Fatalf("ExtractTrack: %v", err)
	}
	attachment, err := d.ExtractAttachment(context.Background(), "/media/movie.mkv", "Arial.ttf")
	if err != nil {
		t.Fatalf("ExtractAttachment: %v", err)
	}

	outputs, err := staging.ListOutputs(dir)
	if err != nil {
		t.Fatalf("ListOutputs: %v", err)
	}
	found := map[string]string{}
	for _, out := range outputs {
		found[out.Kind] = out.Path
	}
	if found["track"] != track.Path {
		t.Fatalf("track output %q not listed: %+v", track.Path, outputs)
	}
	if found["attachment"] != filepath.Dir(attachment.Path) {
		t.Fatalf("attachment dir %q not listed: %+v", filepath.Dir(attachment.Path), outputs)
	}
}

func TestExtractAttachmentFallsBackToDumpAll(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{
		fail("Unrecognized option 'dump_attachment:m:filename:signs.ass'."),
		func(cmd toolexec.Command) (toolexec.Result, error) {
			if cmd.Dir == "" {
				t.Fatalf("alternate variant must run inside the request directory")
			}
			if err := os.WriteFile(filepath.Join(cmd.Dir, "signs.ass"), []byte("[Script Info]\nTitle: x\n"), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			return toolexec.Result{ExitCode: 1}, nil
		},
	}
	d, _ := newTestDispatcher(t, runner)

	res, err := d.ExtractAttachment(context.Background(), "/media/movie.mkv", "signs.ass")
	if err != nil {
		t.Fatalf("ExtractAttachment: %v", err)
	}
	if !res.IsSubtitle || !strings.HasPrefix(res.Text, "[Script Info]") {
		t.Fatalf("unexpected subtitle result: %+v", res)
	}
	if len(runner.calls) != 2 || !slices.Contains(runner.calls[1].Args, "-dump_attachment:t") {
		t.Fatalf("unexpected calls: %v", runner.calls)
	}
}

func TestExtractAttachmentRejectsNonLeafName(t *testing.T) {
	runner := &scriptedRunner{t: t}
	d, _ := newTestDispatcher(t, runner)

	for _, name := range []string{"../evil.ttf", "a/b.ass", "..", ""} {
		if _, err := d.ExtractAttachment(context.Background(), "/media/movie.mkv", name); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("ExtractAttachment(%q) = %v, want validation error", name, err)
		}
	}
	if len(runner.calls) != 0 {
		t.Fatalf("invalid names must not run ffmpeg")
	}
}

func TestExtractAttachmentRequestsDoNotCollide(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{
		writeDumpTarget(t, []byte("first")),
		writeDumpTarget(t, []byte("second")),
	}
	d := NewDispatcher(t.TempDir(), WithRunner(runner))

	first, err := d.ExtractAttachment(context.Background(), "/media/a.mkv", "font.ttf")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := d.ExtractAttachment(context.Background(), "/media/b.mkv", "font.ttf")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Path == second.Path {
		t.Fatalf("attachment paths collided: %q", first.Path)
	}
	if string(first.Data) != "first" || string(second.Data) != "second" {
		t.Fatalf("unexpected contents: %q %q", first.Data, second.Data)
	}
}

func TestExtractSelectionDispatches(t *testing.T) {
	runner := &scriptedRunner{t: t}
	runner.steps = []step{
		writeLastArg(t, []byte(sampleSRT), 0),
		writeDumpTarget(t, []byte("font")),
	}
	d, _ := newTestDispatcher(t, runner)
	ctx := context.Background()

	trackRes, err := d.ExtractSelection(ctx, "/media/movie.mkv", ffprobe.TrackItem(ffprobe.TrackDescriptor{Index: 2, Language: "eng", Format: "subrip"}), "")
	if err != nil {
		t.Fatalf("track selection: %v", err)
	}
	if trackRes.Kind != ffprobe.KindTrack || trackRes.Track == nil || trackRes.Track.Format != FormatSRT {
		t.Fatalf("unexpected track selection result: %+v", trackRes)
	}

	attRes, err := d.ExtractSelection(ctx, "/media/movie.mkv", ffprobe.AttachmentItem(ffprobe.AttachmentDescriptor{Filename: "a.otf", IsFont: true}), "")
	if err != nil {
		t.Fatalf("attachment selection: %v", err)
	}
	if attRes.Kind != ffprobe.KindAttachment || attRes.Attachment == nil || !attRes.Attachment.IsFont {
		t.Fatalf("unexpected attachment selection result: %+v", attRes)
	}

	if _, err := d.ExtractSelection(ctx, "/media/movie.mkv", ffprobe.SelectionItem{Kind: "bogus"}, ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for bad kind, got %v", err)
	}
}

func TestOutputFormat(t *testing.T) {
	cases := map[string]string{"ass": "ass", "ASS (default)": "ass", "subrip": "srt", "": "srt", "ssa": "srt", "webvtt": "srt"}
	for in, want := range cases {
		if got := OutputFormat(in); got != want {
			t.Fatalf("OutputFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
