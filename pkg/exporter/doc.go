// Package exporter runs a complete LinkedIn post export.
//
// A run extracts the profile identifier from the URL, fetches the
// profile's posts through the Apify actor (widening the request once when
// the first batch may not reach back to the start date), keeps the posts
// inside the requested days, renders them as CSV or JSON and saves the
// artifact atomically. An optional YAML or JSON run summary is written next
// to the artifact. Every run carries a UUID that appears in its logs and
// summary.
//
// Errors are *errors.Error values classified as input, upstream or
// internal. No file is written when the fetch fails.
package exporter
