package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videobot_messages_received_total",
		Help: "The total number of text messages received",
	}, []string{"chat_kind"})

	MessagesDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videobot_messages_duplicate_total",
		Help: "The total number of messages ignored as already processed",
	})

	DedupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videobot_dedup_errors_total",
		Help: "The total number of processed-message store failures",
	})

	LinksDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videobot_links_detected_total",
		Help: "Links found in messages by platform and admission decision",
	}, []string{"platform", "admitted"})

	Acquisitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videobot_acquisitions_total",
		Help: "Finished acquisitions by platform, outcome and failure kind",
	}, []string{"platform", "outcome", "kind"})

	AcquisitionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videobot_acquisition_duration_seconds",
		Help:    "Time from admission to a terminal acquisition result",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300, 600},
	}, []string{"platform"})

	ArtifactBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videobot_artifact_bytes",
		Help:    "Size of delivered artifacts",
		Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
	}, []string{"outcome"})

	SnapshotFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videobot_snapshot_fallbacks_total",
		Help: "Snapshot fallback attempts by result",
	}, []string{"result"})

	AcquisitionsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "videobot_acquisitions_in_flight",
		Help: "Number of acquisitions currently holding an extraction slot",
	})

	DeliveryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videobot_delivery_errors_total",
		Help: "Failed chat deliveries by operation",
	}, []string{"op"})

	JanitorRemovedFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videobot_janitor_removed_files_total",
		Help: "Orphaned artifacts removed from the download directory",
	})
)
