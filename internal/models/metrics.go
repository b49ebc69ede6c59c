package models

import "time"

// SystemMetrics is a point-in-time summary of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	StoreOperations          uint64    `json:"store_operations"`
	StoreErrors              uint64    `json:"store_errors"`
	AverageStoreOperationMs  float64   `json:"average_store_operation_ms"`
	ExportJobsFinished       uint64    `json:"export_jobs_finished"`
	ExportJobsFailed         uint64    `json:"export_jobs_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
