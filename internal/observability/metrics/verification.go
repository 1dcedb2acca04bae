package metrics

import "time"

// VerificationSubmit records the outcome of one verification submission.
func VerificationSubmit(verifier, network, result string, duration time.Duration) {
	if !enabled {
		return
	}
	submitTotal.WithLabelValues(verifier, network, result).Inc()
	submitDuration.WithLabelValues(verifier).Observe(duration.Seconds())
}

// VerificationAttempt records a single HTTP attempt against a verifier API.
func VerificationAttempt(result string) {
	if !enabled {
		return
	}
	attemptsTotal.WithLabelValues(result).Inc()
}

// StubSubmission records a submission received by the stub verifier.
func StubSubmission(network, status string) {
	if !enabled {
		return
	}
	stubSubmissionsTotal.WithLabelValues(network, status).Inc()
}
