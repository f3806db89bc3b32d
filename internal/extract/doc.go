// Package extract runs ffmpeg to pull a subtitle track or an embedded
// attachment out of a media container.
//
// Each extraction tries an ordered list of command variants that differ only in
// option syntax, because ffmpeg builds disagree about which spelling they
// accept. An attempt succeeds when its output file exists and is non-empty,
// even if ffmpeg exited non-zero; otherwise the next variant runs. Timeouts and
// capture overflow end the extraction immediately without trying further
// variants.
//
// Text outputs are decoded to UTF-8 (see Decode); font attachments are
// returned as raw bytes.
package extract
