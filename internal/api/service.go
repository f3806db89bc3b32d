package api

import (
	"context"
	"log/slog"
	"time"

	"mkvsubs/internal/config"
	"mkvsubs/internal/extract"
	"mkvsubs/internal/language"
	"mkvsubs/internal/logging"
	"mkvsubs/internal/media/ffprobe"
	"mkvsubs/internal/mediapath"
	"mkvsubs/internal/services"
	"mkvsubs/internal/subtitles"
	"mkvsubs/internal/toolexec"
)

// Service exposes the resolve, analyze, extract and parse pipeline.
// It is safe for concurrent use; requests share only the read-only configuration.
type Service struct {
	cfg        *config.Config
	runner     toolexec.Runner
	resolver   *mediapath.Resolver
	dispatcher *extract.Dispatcher
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRunner overrides the subprocess runner used for ffprobe and ffmpeg.
func WithRunner(runner toolexec.Runner) Option {
	return func(s *Service) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// AnalyzeResult is the outcome of Analyze.
type AnalyzeResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	ffprobe.Result
	Items     []ffprobe.SelectionItem `json:"items"`
	Languages []TrackLanguage         `json:"track_languages"`
	Duration  time.Duration           `json:"-"`
}

// TrackLanguage is the normalized language of one subtitle track.
type TrackLanguage struct {
	Index   int    `json:"index"`
	Code    string `json:"code"`
	ISO6391 string `json:"iso639_1,omitempty"`
	ISO6392 string `json:"iso639_2"`
	Name    string `json:"name"`
}

// TrackPreview is an extracted track plus its bounded cue listing.
type TrackPreview struct {
	Track   extract.TrackResult      `json:"track"`
	Preview subtitles.PreviewResult `json:"preview"`
}

// NewService builds the pipeline from cfg.
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new service", "configuration is required", nil)
	}
	s := &Service{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = toolexec.NewCommandRunner(
			toolexec.WithTimeout(cfg.CommandTimeout()),
			toolexec.WithMaxOutputBytes(cfg.Tools.MaxOutputBytes),
		)
	}
	s.resolver = mediapath.NewResolver(cfg.SearchDirectories(),
		mediapath.WithDepth(cfg.Media.SearchDepth),
		mediapath.WithLogger(s.logger),
	)
	s.dispatcher = extract.NewDispatcher(cfg.Paths.OutputDir,
		extract.WithRunner(s.runner),
		extract.WithBinary(cfg.FFmpegBinary()),
		extract.WithMaxFileBytes(cfg.Tools.MaxFileBytes),
		extract.WithFallbackEncoding(cfg.Decoding.FallbackEncoding),
		extract.WithLogger(s.logger),
	)
	s.logger = logging.NewComponentLogger(s.logger, "api")
	return s, nil
}

// SearchDirectories returns the ordered search roots.
func (s *Service) SearchDirectories() []string {
	return s.resolver.Roots()
}

// ResolvePath maps a bare filename to its location under the search roots.
func (s *Service) ResolvePath(ctx context.Context, filename string) (string, error) {
	_, logger := s.begin(ctx, "resolve")
	return s.resolve(logger, filename)
}

func (s *Service) resolve(logger *slog.Logger, filename string) (string, error) {
	path, err := s.resolver.Resolve(filename)
	if err != nil {
		logger.Debug("resolve failed", logging.String("filename", filename), logging.Error(err))
		return "", err
	}
	logger.Debug("resolved media path", logging.String("filename", filename), logging.String("path", path))
	return path, nil
}

// Analyze resolves filename and lists its subtitle tracks and attachments.
func (s *Service) Analyze(ctx context.Context, filename string) (AnalyzeResult, error) {
	ctx, logger := s.begin(ctx, "analyze")
	path, err := s.resolve(logger, filename)
	if err != nil {
		return AnalyzeResult{}, err
	}

	started := time.Now()
	result, err := ffprobe.Inspect(ctx, s.runner, s.cfg.FFprobeBinary(), path)
	if err != nil {
		logging.ErrorWithContext(logger, "analysis failed", "analysis_"+services.Category(err),
			logging.String("path", path),
			logging.Error(err),
		)
		return AnalyzeResult{}, err
	}
	if result.Empty() {
		logging.WarnWithContext(logger, "no subtitle tracks or attachments found", "analysis_empty",
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "run ffprobe by hand to confirm the file has text subtitles"),
			logging.String(logging.FieldImpact, "nothing to extract"),
		)
	}
	elapsed := time.Since(started)
	logger.Info("analysis complete",
		logging.String("path", path),
		logging.Int("tracks", len(result.Tracks)),
		logging.Int("attachments", len(result.Attachments)),
		logging.Duration("elapsed", elapsed),
	)
	return AnalyzeResult{
		Filename: filename,
		Path:     path,
		Result:   result,
		Items:     ffprobe.Items(result),
		Languages: trackLanguages(result.Tracks),
		Duration:  elapsed,
	}, nil
}

func trackLanguages(tracks []ffprobe.TrackDescriptor) []TrackLanguage {
	out := make([]TrackLanguage, 0, len(tracks))
	for _, track := range tracks {
		out = append(out, TrackLanguage{
			Index:   track.Index,
			Code:    track.Language,
			ISO6391: language.ToISO2(track.Language),
			ISO6392: language.ToISO3(track.Language),
			Name:    language.DisplayName(track.Language),
		})
	}
	return out
}

// FirstTrackWithLanguage returns the first track item whose language has the
// same base language as code, so "en", "eng" and "EN" all select an "eng" track.
func FirstTrackWithLanguage(items []ffprobe.SelectionItem, code string) (ffprobe.SelectionItem, bool) {
	for _, item := range items {
		if item.Kind == ffprobe.KindTrack && item.Track != nil && language.Equal(item.Track.Language, code) {
			return item, true
		}
	}
	return ffprobe.SelectionItem{}, false
}

// ExtractTrack resolves filename and extracts the stream at the container index.
func (s *Service) ExtractTrack(ctx context.Context, filename string, index int, format string) (extract.TrackResult, error) {
	ctx, logger := s.begin(ctx, "extract")
	path, err := s.resolve(logger, filename)
	if err != nil {
		return extract.TrackResult{}, err
	}
	return s.dispatcher.ExtractTrack(ctx, path, index, format)
}

// ExtractAttachment resolves filename and dumps the named attachment.
func (s *Service) ExtractAttachment(ctx context.Context, filename, attachment string) (extract.AttachmentResult, error) {
	ctx, logger := s.begin(ctx, "extract")
	path, err := s.resolve(logger, filename)
	if err != nil {
		return extract.AttachmentResult{}, err
	}
	return s.dispatcher.ExtractAttachment(ctx, path, attachment)
}

// ExtractSelection resolves filename and extracts whichever item was selected.
func (s *Service) ExtractSelection(ctx context.Context, filename string, item ffprobe.SelectionItem, format string) (extract.SelectionResult, error) {
	ctx, logger := s.begin(ctx, "extract")
	path, err := s.resolve(logger, filename)
	if err != nil {
		return extract.SelectionResult{}, err
	}
	return s.dispatcher.ExtractSelection(ctx, path, item, format)
}

// ParseSubtitleDocument parses subtitle text; it never fails.
func (s *Service) ParseSubtitleDocument(text, hint string) subtitles.Document {
	doc := subtitles.Parse(text, hint)
	if doc.Error != "" {
		logging.WarnWithContext(s.logger, "subtitle parse recovered from error", "parse_failure",
			logging.String("format", doc.Format),
			logging.String("error", doc.Error),
			logging.String(logging.FieldImpact, "preview is empty"),
		)
	}
	return doc
}

// PreviewTrack extracts a track and returns at most limit parsed cues.
func (s *Service) PreviewTrack(ctx context.Context, filename string, index int, format string, limit int) (TrackPreview, error) {
	ctx, _ = s.begin(ctx, "preview")
	track, err := s.ExtractTrack(ctx, filename, index, format)
	if err != nil {
		return TrackPreview{}, err
	}
	doc := s.ParseSubtitleDocument(track.Text, track.Format)
	return TrackPreview{Track: track, Preview: subtitles.Preview(doc, limit)}, nil
}

// begin tags ctx with a request id (kept if already present) and stage.
func (s *Service) begin(ctx context.Context, stage string) (context.Context, *slog.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, _ = services.EnsureRequestID(ctx)
	ctx = services.WithStage(ctx, stage)
	return ctx, logging.WithContext(ctx, s.logger)
}
