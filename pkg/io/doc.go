// Package io reads and writes timeline documents.
//
// # Overview
//
// A timeline document is a file holding everything needed to render a
// mockup: the event table, the category dimension, the mockup format and
// the chart style. The CLI edits documents in place and renders them; the
// HTTP service can preload one into its session.
//
// # Encodings
//
// The encoding is chosen by file extension (see [EncodingFor]):
//
//   - .toml: TOML, via github.com/BurntSushi/toml
//   - .yaml, .yml: YAML, via gopkg.in/yaml.v3
//   - .json: JSON
//
// A TOML document looks like this:
//
//	group_by = "place"
//	format = "story"
//	background_image = "beach.jpg"
//
//	[style]
//	bar_color = "palette"
//	bar_opacity = 0.8
//
//	[[events]]
//	title = "Lunch"
//	place = "Cafe"
//	start = 2024-05-01T12:00:00Z
//	end = 2024-05-01T13:00:00Z
//
// Every field is optional. Missing style fields keep their defaults, an
// empty group_by means "title" and an empty format means "story".
// background_image is resolved relative to the document's directory.
//
// # Import
//
// Use [Load] to read a document from a file path, or [Read] to decode from
// any io.Reader. Decoding errors carry the INVALID_DOCUMENT code; a missing
// file carries FILE_NOT_FOUND.
//
//	doc, err := io.Load("day.toml")
//	opts, err := doc.Options(filepath.Dir("day.toml"))
//
// # Export
//
// Use [Save] to write a document to a file, or [Write] to encode to any
// io.Writer. [Save] writes to a temporary file and renames it, so readers
// never see a partial document.
package io
