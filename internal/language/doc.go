// Package language normalizes the language tags ffprobe prints for subtitle
// streams (ISO 639-1, ISO 639-2 terminology and bibliographic codes) and
// renders English display names for listings.
package language
