package internaldefs

import (
	perksAdmin "github.com/MrEthical07/perksAdmin"
)

// CounterDef names one console counter for exporters.
type CounterDef struct {
	ID   perksAdmin.MetricID
	Name string
	Help string
}

// HistogramDef names one console histogram for exporters.
type HistogramDef struct {
	ID   perksAdmin.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: perksAdmin.MetricRequest, Name: "perks_admin_api_requests_total", Help: "Completed API requests."},
	{ID: perksAdmin.MetricRequestFailure, Name: "perks_admin_api_request_failures_total", Help: "API requests answered with a non-2xx status."},
	{ID: perksAdmin.MetricRequestNetworkError, Name: "perks_admin_api_network_errors_total", Help: "API requests that got no response."},
	{ID: perksAdmin.MetricUnauthorized, Name: "perks_admin_api_unauthorized_total", Help: "API responses with status 401."},
	{ID: perksAdmin.MetricCacheHit, Name: "perks_admin_cache_hits_total", Help: "Fresh cache reads."},
	{ID: perksAdmin.MetricCacheMiss, Name: "perks_admin_cache_misses_total", Help: "Cache reads that fetched synchronously."},
	{ID: perksAdmin.MetricCacheStale, Name: "perks_admin_cache_stale_total", Help: "Stale cache reads served while revalidating."},
	{ID: perksAdmin.MetricCacheDiscarded, Name: "perks_admin_cache_discarded_total", Help: "Responses dropped because a newer request won."},
	{ID: perksAdmin.MetricCacheEvicted, Name: "perks_admin_cache_evicted_total", Help: "Cache entries removed or collected."},
	{ID: perksAdmin.MetricCacheFetchFailure, Name: "perks_admin_cache_fetch_failures_total", Help: "Resource fetches that failed after retries."},
	{ID: perksAdmin.MetricCacheRevalidate, Name: "perks_admin_cache_revalidations_total", Help: "Background revalidations started."},
	{ID: perksAdmin.MetricSignInSuccess, Name: "perks_admin_sign_in_success_total", Help: "Successful sign-ins."},
	{ID: perksAdmin.MetricSignInFailure, Name: "perks_admin_sign_in_failure_total", Help: "Rejected sign-ins."},
	{ID: perksAdmin.MetricSignOut, Name: "perks_admin_sign_out_total", Help: "Explicit sign-outs."},
	{ID: perksAdmin.MetricSessionExpired, Name: "perks_admin_session_expired_total", Help: "Sessions ended by the server."},
	{ID: perksAdmin.MetricBlockToggleSuccess, Name: "perks_admin_block_toggle_success_total", Help: "Accepted block or unblock requests."},
	{ID: perksAdmin.MetricBlockToggleFailure, Name: "perks_admin_block_toggle_failure_total", Help: "Failed block or unblock requests."},
	{ID: perksAdmin.MetricBlockToggleRejected, Name: "perks_admin_block_toggle_rejected_total", Help: "Toggles rejected while one was in flight."},
	{ID: perksAdmin.MetricPasswordChangeSuccess, Name: "perks_admin_password_change_success_total", Help: "Successful password changes."},
	{ID: perksAdmin.MetricPasswordChangeFailure, Name: "perks_admin_password_change_failure_total", Help: "Failed password changes."},
	{ID: perksAdmin.MetricPasswordResetRequest, Name: "perks_admin_password_reset_request_total", Help: "Verification codes requested."},
	{ID: perksAdmin.MetricOTPVerifySuccess, Name: "perks_admin_otp_verify_success_total", Help: "Accepted verification codes."},
	{ID: perksAdmin.MetricOTPVerifyFailure, Name: "perks_admin_otp_verify_failure_total", Help: "Rejected verification codes."},
	{ID: perksAdmin.MetricPasswordResetSuccess, Name: "perks_admin_password_reset_success_total", Help: "Completed password resets."},
	{ID: perksAdmin.MetricPasswordResetFailure, Name: "perks_admin_password_reset_failure_total", Help: "Failed password resets."},
	{ID: perksAdmin.MetricNotificationCreated, Name: "perks_admin_notifications_created_total", Help: "Broadcast notifications sent."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: perksAdmin.MetricRequestLatency, Name: "perks_admin_api_request_duration_seconds", Help: "API request latency histogram."},
}

// HistogramBounds are the Prometheus le labels, matching the console buckets.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// NotificationsDroppedName is read from the dispatcher rather than the
// metrics snapshot, so it sits outside CounterDefs.
const (
	NotificationsDroppedName = "perks_admin_notifications_dropped_total"
	NotificationsDroppedHelp = "Notifications dropped because the delivery buffer was full."
)

// NormalizeBuckets copies raw into a fixed array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
