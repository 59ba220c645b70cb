// Package pkg provides the core libraries for Storyline timeline charts.
//
// # Overview
//
// Storyline turns a table of events (title, place, start, end) into a
// horizontal timeline chart and places it on an Instagram-sized canvas.
// The pkg directory is organized into these areas:
//
//  1. [timeline] - Domain logic (events, style, axis layout, rasterization)
//  2. [mockup] - Canvas formats and compositing
//  3. [pipeline] - Orchestration (events → chart → mockup) with caching
//  4. [cache], [session] - Infrastructure (render cache, editing sessions)
//  5. [io] - Timeline documents in TOML, YAML and JSON
//  6. [errors], [fonts], [observability], [buildinfo] - Shared support
//
// # Architecture
//
// The typical data flow through Storyline:
//
//	Timeline document or HTTP session
//	         ↓
//	    [pipeline.Options] (events, group-by, style, format)
//	         ↓
//	    [timeline] package (categories, axis, bars → chart image)
//	         ↓
//	    [mockup] package (resize + center on canvas)
//	         ↓
//	    PNG output
//
// # Quick Start
//
//	doc, _ := io.Load("day.toml")
//	opts, _ := doc.Options(".")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, opts)
//	os.WriteFile(result.Filename, result.PNG, 0o644)
package pkg
