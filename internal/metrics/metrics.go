package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WaitlistRegistrations records waitlist calls by result (added|duplicate|invalid|error).
	WaitlistRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchecker_waitlist_registrations_total",
			Help: "Total number of waitlist registration attempts",
		},
		[]string{"result"},
	)

	// DeviceChecks counts device trust checks by status (trusted|otp_sent|error).
	DeviceChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchecker_device_checks_total",
			Help: "Total number of device trust checks",
		},
		[]string{"status"},
	)

	// OTPVerifications counts redemptions by status (success|invalid|expired|locked|error).
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchecker_otp_verifications_total",
			Help: "Total number of one-time code redemptions",
		},
		[]string{"status"},
	)

	// UploadURLs counts presigned upload grants by result (granted|rejected|error).
	UploadURLs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchecker_upload_urls_total",
			Help: "Total number of upload URL requests",
		},
		[]string{"result"},
	)

	// WelcomeEmails counts welcome notifications by result (sent|skipped|error).
	WelcomeEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchecker_welcome_emails_total",
			Help: "Total number of waitlist welcome emails",
		},
		[]string{"result"},
	)

	// SweptChallenges counts expired challenges removed by the sweeper.
	SweptChallenges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contractchecker_swept_challenges_total",
			Help: "Total number of expired OTP challenges deleted",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contractchecker_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
