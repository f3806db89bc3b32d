// Package config loads, normalizes, and validates mkvsubs configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MKVSUBS_MEDIA_DIRS. The Config type centralizes the search directories the
// path resolver walks, the output directory extraction writes into, and the
// subprocess limits applied to ffmpeg and ffprobe.
//
// The ordered search directory list is the only state this package persists;
// AddSearchDirectory is the single mutation path and serializes writers with an
// advisory file lock.
package config
