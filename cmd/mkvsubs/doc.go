// Package main hosts the mkvsubs CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into calls on the
// api.Service pipeline: filename resolution, ffprobe analysis, ffmpeg
// extraction and subtitle parsing. It also owns configuration scaffolding,
// search directory persistence, environment checks and the output retention
// sweep.
//
// Keep this package lean: add behaviour to the internal packages first, then
// surface it through a command or flag here.
package main
