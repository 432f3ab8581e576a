package integration

import (
	"testing"
)

// TestLiveness verifies the liveness endpoint responds.
func TestLiveness(t *testing.T) {
	skipIfNotRunning(t)

	status, data := httpGet(t, baseURL()+"/health/live")
	requireStatus(t, status, 200)
	if got := extractString(t, data, "status"); got != "up" {
		t.Errorf("liveness status = %q, want up", got)
	}
}

// TestReadiness verifies the readiness endpoint reports its dependency checks.
func TestReadiness(t *testing.T) {
	skipIfNotRunning(t)

	status, data := httpGet(t, baseURL()+"/health/ready")
	requireStatus(t, status, 200)
	if extractField(data, "checks.postgres") == nil {
		t.Error("expected a postgres check in the readiness report")
	}
	if extractField(data, "checks.redis") == nil {
		t.Error("expected a redis check in the readiness report")
	}
	// Kafka is reported but non-critical, so it appears even when readiness is 200.
	if extractField(data, "checks.kafka") == nil {
		t.Error("expected a kafka check in the readiness report")
	}
}
