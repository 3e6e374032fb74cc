package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/target/portal-auth/internal/errors"
)

func TestPrometheus_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheus(WithRegistry(reg), WithNamespace("test"))

	rec.GuardDecision("login_required", "no_artifact")
	rec.GuardDecision("login_required", "no_artifact")
	rec.SessionOperation("create", ResultError, apperrors.New(apperrors.ErrCodeInvalidToken, "bad"))
	rec.AdminOperation("list", ResultSuccess, nil)

	assert.InDelta(t, 2, testutil.ToFloat64(rec.guardDecisions.WithLabelValues("login_required", "no_artifact")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.sessionOps.WithLabelValues("create", ResultError, "invalid_token")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.adminOps.WithLabelValues("list", ResultSuccess, "")), 0)

	count, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, Noop{}, OrNoop(nil))
	rec := NewPrometheus(WithRegistry(prometheus.NewRegistry()))
	assert.Same(t, rec, OrNoop(rec))
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil))
	assert.Equal(t, ResultError, ResultFor(errors.New("x")))
}
