// Package dataprocessing implements the two ingestion pipelines and the
// shared aggregation step.
//
// The environment pipeline parses per-school sensor CSVs, the growth pipeline
// parses the per-school sheets of the growth result workbook, and the
// summarizer computes grouped means over the unified record tables. Columns
// in both inputs are mapped by position, not by header name; the real headers
// are discarded.
package dataprocessing
