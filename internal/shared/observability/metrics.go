package observability

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topicsdk_phase_seconds",
		Help:    "Time spent in a run phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	TopicsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topicsdk_topics_loaded_total",
		Help: "Total number of topic documents parsed.",
	})

	TopicCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topicsdk_topic_cache_hits_total",
		Help: "Total number of topic-by-id lookups served from the cache.",
	})

	FilesSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topicsdk_files_saved_total",
		Help: "Total number of topic files written back to disk.",
	})

	FileSaveErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topicsdk_file_save_errors_total",
		Help: "Total number of topic files that failed to save.",
	})

	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topicsdk_checkouts_total",
		Help: "Total number of source-control checkout attempts by result.",
	}, []string{"result"})

	DiagEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topicsdk_diag_entries_total",
		Help: "Total number of entries added to diagnostic logs.",
	}, []string{"log"})

	ModelNamespaces = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "topicsdk_model_namespaces",
		Help: "Number of namespaces in the last built WinRT model.",
	})

	ModelClasses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "topicsdk_model_classes",
		Help: "Number of classes in the last built WinRT model.",
	})

	Win32Functions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "topicsdk_win32_functions",
		Help: "Number of distinct Win32 function names registered.",
	})
)

// WriteTextfile dumps the default registry in the node-exporter textfile
// format.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
