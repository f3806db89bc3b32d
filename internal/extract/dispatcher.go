package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mkvsubs/internal/logging"
	"mkvsubs/internal/media/ffprobe"
	"mkvsubs/internal/mediapath"
	"mkvsubs/internal/services"
	"mkvsubs/internal/staging"
	"mkvsubs/internal/toolexec"
)

const (
	// DefaultBinary is used when no ffmpeg binary is configured.
	DefaultBinary = "ffmpeg"

	defaultMaxFileBytes = 64 * 1024 * 1024

	FormatSRT = "srt"
	FormatASS = "ass"
)

// TrackResult describes an extracted subtitle track.
type TrackResult struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Text     string `json:"text"`
	Encoding string `json:"encoding"`
	Lossy    bool   `json:"lossy,omitempty"`
	Command  string `json:"command"`
}

// AttachmentResult describes an extracted attachment. Data always holds the
// raw bytes; Text is populated only for subtitle attachments.
type AttachmentResult struct {
	Path       string `json:"path"`
	Filename   string `json:"filename"`
	IsSubtitle bool   `json:"is_subtitle"`
	IsFont     bool   `json:"is_font"`
	Data       []byte `json:"-"`
	Size       int64  `json:"size"`
	Text       string `json:"text,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
	Lossy      bool   `json:"lossy,omitempty"`
	Command    string `json:"command"`
}

// SelectionResult holds the outcome of ExtractSelection; the pointer matching Kind is set.
type SelectionResult struct {
	Kind       ffprobe.ItemKind  `json:"kind"`
	Track      *TrackResult      `json:"track,omitempty"`
	Attachment *AttachmentResult `json:"attachment,omitempty"`
}

// Dispatcher orchestrates ffmpeg extraction runs.
type Dispatcher struct {
	outputDir        string
	binary           string
	runner           toolexec.Runner
	maxFileBytes     int64
	fallbackEncoding string
	logger           *slog.Logger
	now              func() time.Time
	newID            func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRunner overrides the subprocess runner (primarily for tests).
func WithRunner(runner toolexec.Runner) Option {
	return func(d *Dispatcher) {
		if runner != nil {
			d.runner = runner
		}
	}
}

// WithBinary overrides the ffmpeg executable.
func WithBinary(binary string) Option {
	return func(d *Dispatcher) {
		if strings.TrimSpace(binary) != "" {
			d.binary = strings.TrimSpace(binary)
		}
	}
}

// WithMaxFileBytes bounds the size of an extracted file that will be read back.
func WithMaxFileBytes(limit int64) Option {
	return func(d *Dispatcher) {
		if limit > 0 {
			d.maxFileBytes = limit
		}
	}
}

// WithFallbackEncoding sets the charset used for non UTF-8 subtitles. Empty disables it.
func WithFallbackEncoding(name string) Option {
	return func(d *Dispatcher) {
		d.fallbackEncoding = strings.TrimSpace(name)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock overrides the time source used for output names.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher constructs a dispatcher writing into outputDir.
func NewDispatcher(outputDir string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		outputDir:        outputDir,
		binary:           DefaultBinary,
		runner:           toolexec.NewCommandRunner(),
		maxFileBytes:     defaultMaxFileBytes,
		fallbackEncoding: "gb18030",
		logger:           logging.NewNop(),
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "extract")
	return d
}

// OutputFormat maps a track format or user request onto the produced format:
// "ass" is copied as-is, everything else is converted to SRT.
func OutputFormat(format string) string {
	fields := strings.Fields(strings.ToLower(format))
	if len(fields) > 0 && fields[0] == FormatASS {
		return FormatASS
	}
	return FormatSRT
}

// TrackCommands returns the ordered command variants for extracting a track.
func TrackCommands(binary, path string, index int, format, output string) []toolexec.Command {
	mapSpec := "0:" + strconv.Itoa(index)
	if OutputFormat(format) == FormatASS {
		return []toolexec.Command{
			{Binary: binary, Args: []string{"-hide_banner", "-y", "-i", path, "-map", mapSpec, "-c:s", "copy", output}},
			{Binary: binary, Args: []string{"-hide_banner", "-y", "-i", path, "-map", mapSpec, "-c", "copy", output}},
		}
	}
	return []toolexec.Command{
		{Binary: binary, Args: []string{"-hide_banner", "-y", "-i", path, "-map", mapSpec, "-c:s", "srt", output}},
		{Binary: binary, Args: []string{"-hide_banner", "-y", "-i", path, "-map", mapSpec, "-f", "srt", output}},
	}
}

// AttachmentCommands returns the ordered command variants for dumping one
// attachment. The alternate variant dumps every attachment under its own name
// into dir.
func AttachmentCommands(binary, path, filename, dir string) []toolexec.Command {
	output := filepath.Join(dir, filename)
	return []toolexec.Command{
		{Binary: binary, Args: []string{"-hide_banner", "-y", "-dump_attachment:m:filename:" + filename, output, "-i", path}},
		{Binary: binary, Args: []string{"-hide_banner", "-y", "-dump_attachment:t", "", "-i", path}, Dir: dir},
	}
}

// ExtractTrack extracts the subtitle stream at the container index into the output directory.
func (d *Dispatcher) ExtractTrack(ctx context.Context, path string, index int, format string) (TrackResult, error) {
	ctx = services.WithStage(ctx, "extract")
	if strings.TrimSpace(path) == "" {
		return TrackResult{}, services.Wrap(services.ErrValidation, "extract", "extract track", "empty media path", nil)
	}
	if index < 0 {
		return TrackResult{}, services.Wrap(services.ErrValidation, "extract", "extract track", fmt.Sprintf("invalid stream index %d", index), nil)
	}
	if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
		return TrackResult{}, services.Wrap(services.ErrConfiguration, "extract", "create output dir", d.outputDir, err)
	}

	outFormat := OutputFormat(format)
	name := fmt.Sprintf("%s%d_%s.%s", staging.TrackPrefix, d.now().UnixMilli(), shortID(d.newID()), outFormat)
	output := filepath.Join(d.outputDir, name)

	logger := logging.WithContext(ctx, d.logger)
	logger.Info("extracting subtitle track",
		logging.String("path", path),
		logging.Int("index", index),
		logging.String("format", outFormat),
	)

	cmd, err := d.runVariants(ctx, logger, "extract track", output, TrackCommands(d.binary, path, index, format, output))
	if err != nil {
		return TrackResult{}, err
	}
	data, err := d.readOutput(output)
	if err != nil {
		return TrackResult{}, err
	}
	decoded, err := Decode(data, d.fallbackEncoding)
	if err != nil {
		return TrackResult{}, services.Wrap(services.ErrValidation, "extract", "decode track", output, err)
	}
	d.warnLossy(logger, decoded, output)

	logger.Info("subtitle track extracted",
		logging.String("output", output),
		logging.Int("bytes", len(data)),
		logging.String("encoding", decoded.Encoding),
	)
	return TrackResult{
		Path:     output,
		Format:   outFormat,
		Text:     decoded.Text,
		Encoding: decoded.Encoding,
		Lossy:    decoded.Lossy,
		Command:  cmd,
	}, nil
}

// ExtractAttachment dumps the named attachment into a fresh per-request directory.
func (d *Dispatcher) ExtractAttachment(ctx context.Context, path, filename string) (AttachmentResult, error) {
	ctx = services.WithStage(ctx, "extract")
	if strings.TrimSpace(path) == "" {
		return AttachmentResult{}, services.Wrap(services.ErrValidation, "extract", "extract attachment", "empty media path", nil)
	}
	if err := mediapath.ValidateLeafName(filename); err != nil {
		return AttachmentResult{}, err
	}

	dir := filepath.Join(d.outputDir, staging.AttachmentsDir, fmt.Sprintf("%d-%s", d.now().UnixMilli(), d.newID()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return AttachmentResult{}, services.Wrap(services.ErrConfiguration, "extract", "create attachment dir", dir, err)
	}
	output := filepath.Join(dir, filename)

	logger := logging.WithContext(ctx, d.logger)
	logger.Info("extracting attachment",
		logging.String("path", path),
		logging.String("attachment", filename),
	)

	cmd, err := d.runVariants(ctx, logger, "extract attachment", output, AttachmentCommands(d.binary, path, filename, dir))
	if err != nil {
		return AttachmentResult{}, err
	}
	data, err := d.readOutput(output)
	if err != nil {
		return AttachmentResult{}, err
	}

	isSubtitle, isFont := ffprobe.ClassifyAttachment(filename, "")
	result := AttachmentResult{
		Path:       output,
		Filename:   filename,
		IsSubtitle: isSubtitle,
		IsFont:     isFont,
		Data:       data,
		Size:       int64(len(data)),
		Command:    cmd,
	}
	if isSubtitle {
		decoded, err := Decode(data, d.fallbackEncoding)
		if err != nil {
			return AttachmentResult{}, services.Wrap(services.ErrValidation, "extract", "decode attachment", output, err)
		}
		d.warnLossy(logger, decoded, output)
		result.Text = decoded.Text
		result.Encoding = decoded.Encoding
		result.Lossy = decoded.Lossy
	}

	logger.Info("attachment extracted",
		logging.String("output", output),
		logging.Int64("bytes", result.Size),
		logging.Bool("font", isFont),
	)
	return result, nil
}

// ExtractSelection dispatches on the selection kind. format applies to tracks only.
func (d *Dispatcher) ExtractSelection(ctx context.Context, path string, item ffprobe.SelectionItem, format string) (SelectionResult, error) {
	switch item.Kind {
	case ffprobe.KindTrack:
		if item.Track == nil {
			break
		}
		if strings.TrimSpace(format) == "" {
			format = item.Track.Format
		}
		res, err := d.ExtractTrack(ctx, path, item.Track.Index, format)
		if err != nil {
			return SelectionResult{}, err
		}
		return SelectionResult{Kind: ffprobe.KindTrack, Track: &res}, nil
	case ffprobe.KindAttachment:
		if item.Attachment == nil {
			break
		}
		res, err := d.ExtractAttachment(ctx, path, item.Attachment.Filename)
		if err != nil {
			return SelectionResult{}, err
		}
		return SelectionResult{Kind: ffprobe.KindAttachment, Attachment: &res}, nil
	}
	return SelectionResult{}, services.Wrap(services.ErrValidation, "extract", "extract selection", fmt.Sprintf("invalid selection kind %q", item.Kind), nil)
}

// runVariants tries each command until one leaves a non-empty output file.
// It returns the command string that succeeded.
func (d *Dispatcher) runVariants(ctx context.Context, logger *slog.Logger, operation, output string, variants []toolexec.Command) (string, error) {
	attempts := make([]Attempt, 0, len(variants))
	for i, cmd := range variants {
		logger.Debug("running ffmpeg",
			logging.String("command", cmd.String()),
			logging.Int("variant", i+1),
		)
		result, err := d.runner.Run(ctx, cmd)
		if err != nil {
			if errors.Is(err, services.ErrTimeout) || errors.Is(err, services.ErrOutputLimit) {
				logging.ErrorWithContext(logger, "ffmpeg aborted", "extraction_"+services.Category(err),
					logging.String("command", cmd.String()),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "raise tools.command_timeout or tools.max_output_bytes"),
				)
				return "", fmt.Errorf("%s: %w", operation, err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", fmt.Errorf("%s: %w", operation, ctxErr)
			}
		}

		if outputReady(output) {
			if result.ExitCode != 0 {
				logger.Debug("ffmpeg exited non-zero but produced output",
					logging.Int("exit_code", result.ExitCode),
					logging.String("output", output),
				)
			}
			return cmd.String(), nil
		}

		attempt := Attempt{
			Command:    cmd.String(),
			Diagnostic: tail(result.Diagnostic, maxDiagnosticTail),
			ExitCode:   result.ExitCode,
			Err:        err,
		}
		attempts = append(attempts, attempt)
		if i < len(variants)-1 {
			logging.WarnWithContext(logger, "ffmpeg variant produced no output; trying alternate syntax", "extraction_fallback",
				logging.String("command", attempt.Command),
				logging.Int("exit_code", attempt.ExitCode),
				logging.String(logging.FieldErrorHint, hintOr(attempt.Diagnostic, "alternate option syntax will be tried")),
				logging.String(logging.FieldImpact, "extraction retried"),
			)
		}
	}

	extractErr := &ExtractionError{Operation: operation, Attempts: attempts}
	logging.ErrorWithContext(logger, "extraction failed", "extraction_failed",
		logging.String("output", output),
		logging.Int("attempts", len(attempts)),
		logging.Error(extractErr),
		logging.String(logging.FieldErrorHint, hintOr(lastDiagnostic(attempts), "run the command by hand to inspect ffmpeg output")),
	)
	return "", extractErr
}

func (d *Dispatcher) readOutput(output string) ([]byte, error) {
	info, err := os.Stat(output)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "extract", "stat output", output, err)
	}
	if info.Size() > d.maxFileBytes {
		return nil, services.Wrap(services.ErrOutputLimit, "extract", "read output",
			fmt.Sprintf("%s is %d bytes, limit %d", output, info.Size(), d.maxFileBytes), nil)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "extract", "read output", output, err)
	}
	return data, nil
}

func (d *Dispatcher) warnLossy(logger *slog.Logger, decoded Decoded, output string) {
	if !decoded.Lossy {
		return
	}
	logging.WarnWithContext(logger, "subtitle is not valid UTF-8; invalid bytes replaced", "decode_lossy",
		logging.String("output", output),
		logging.String(logging.FieldErrorHint, "set decoding.fallback_encoding to the file's charset"),
		logging.String(logging.FieldImpact, "some characters display as replacement glyphs"),
	)
}

func outputReady(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func hintOr(diagnostic, fallback string) string {
	if hint := DiagnosticHint(diagnostic); hint != "" {
		return hint
	}
	return fallback
}

func lastDiagnostic(attempts []Attempt) string {
	if len(attempts) == 0 {
		return ""
	}
	return attempts[len(attempts)-1].Diagnostic
}
