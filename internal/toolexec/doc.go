// Package toolexec runs external media tools (ffmpeg, ffprobe) as blocking
// subprocesses with a timeout and a bounded diagnostic capture.
//
// The Runner interface is the seam the analysis and extraction packages use so
// tests can substitute scripted fakes. CommandRunner is the real
// implementation: it captures the diagnostic stream (stderr, and stdout when
// requested) up to a byte limit, kills the process when the limit is exceeded,
// and reports timeouts and overflows as typed errors that match
// services.ErrTimeout and services.ErrOutputLimit.
package toolexec
