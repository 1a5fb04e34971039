// Package metrics метрики Prometheus для сервера репозитория.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repomgr_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repomgr_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	repositoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repomgr_repository_operations_total",
			Help: "Total repository operations by outcome",
		},
		[]string{"operation", "status"},
	)

	uploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "repomgr_uploaded_bytes_total",
			Help: "Total bytes accepted by the upload endpoint",
		},
	)

	configChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repomgr_config_changes_total",
			Help: "Total configuration change requests by setting and outcome",
		},
		[]string{"setting", "status"},
	)
)

// Handler HTTP-обработчик для выдачи метрик.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRepositoryOperation учитывает операцию над репозиторием, err == nil считается успехом.
func RecordRepositoryOperation(operation string, err error) {
	repositoryOperationsTotal.WithLabelValues(operation, outcome(err == nil)).Inc()
}

func RecordUpload(bytes int64) {
	uploadedBytesTotal.Add(float64(bytes))
}

// RecordConfigChange setting должен быть из известного набора, иначе метка
// разрастётся от произвольного пользовательского ввода.
func RecordConfigChange(setting string, success bool) {
	configChangesTotal.WithLabelValues(setting, outcome(success)).Inc()
}

// RegisterLogLevel публикует текущий порог логирования как gauge.
// Вызывается один раз: повторная регистрация паникует.
func RegisterLogLevel(level func() float64) prometheus.GaugeFunc {
	return promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "repomgr_log_level",
			Help: "Current logrus level of the running logger (0 panic .. 6 trace)",
		},
		level,
	)
}

func outcome(success bool) string {
	if success {
		return StatusSuccess
	}
	return StatusError
}
