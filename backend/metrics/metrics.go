// Package metrics holds the Prometheus collectors for the picker backend.
// They are only exposed over HTTP when the host enables it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Thumbnail metrics
var (
	ThumbnailCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "librarypicker_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail lookups served from cache",
		},
		[]string{"tier"}, // memory, disk
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "librarypicker_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail lookups that had to be rendered",
		},
	)

	ThumbnailRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "librarypicker_thumbnail_render_duration_seconds",
			Help:    "Time taken to render a thumbnail from the library",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)

// Library metrics
var (
	LibraryFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "librarypicker_library_fetch_duration_seconds",
			Help:    "Library fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // albums, items
	)

	LibraryScansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "librarypicker_library_scans_total",
			Help: "Total number of full library scans",
		},
	)

	LibraryItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "librarypicker_library_items",
			Help: "Number of media items found by the last library scan",
		},
	)

	MetadataStoreHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "librarypicker_metadata_store_hits_total",
			Help: "Total number of item metadata reads served by the metadata store",
		},
	)
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
