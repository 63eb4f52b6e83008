package persistence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var blobBytes = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "learnhub_forum_blob_bytes",
	Help:    "Size of the saved forum blob",
	Buckets: prometheus.ExponentialBuckets(256, 4, 10),
})
