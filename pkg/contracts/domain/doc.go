// Package domain contains the shared record and summary types produced by the
// data loading pipelines. These types are the contract between the loaders,
// the aggregator, the exporters and the HTTP layer.
package domain
