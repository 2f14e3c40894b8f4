// Package storemetrics exports the statistics of indexed stores as Prometheus metrics.
package storemetrics
