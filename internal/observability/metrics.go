package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RecipesCreated counts recipes created since process start.
	RecipesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_recipes_created_total",
		Help: "Total number of recipes created",
	})

	// ShoppingListDownloads counts shopping list file downloads.
	ShoppingListDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_shopping_list_downloads_total",
		Help: "Total number of shopping list downloads",
	})

	// ShortLinkRedirects counts resolved short link redirects.
	ShortLinkRedirects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_short_link_redirects_total",
		Help: "Total number of short link redirects served",
	})

	// ImageUploads counts decoded image uploads by outcome.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_image_uploads_total",
		Help: "Total number of image uploads by outcome",
	}, []string{"outcome"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
