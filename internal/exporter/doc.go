// Package exporter renders the unified tables and summaries into their
// download formats: UTF-8 CSV with a byte-order mark for the environment data
// (so spreadsheets detect the encoding) and xlsx for the growth data. The
// ec_goal column is excluded from both raw exports.
package exporter
