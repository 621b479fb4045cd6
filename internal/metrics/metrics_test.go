package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SessionStarted()
	m.QuestionServed()
	m.QuestionServed()
	m.Answered(true)
	m.Answered(false)
	m.Answered(true)
	m.Conflict("next_question")
	m.Observe("next_question", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(m.QuestionsServed); got != 2 {
		t.Fatalf("expected 2 served, got %v", got)
	}
	if got := testutil.ToFloat64(m.Answers.WithLabelValues("true")); got != 2 {
		t.Fatalf("expected 2 correct answers, got %v", got)
	}
	if got := testutil.ToFloat64(m.Conflicts.WithLabelValues("next_question")); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionStarted()
	m.Answered(true)
	m.Observe("start_session", time.Now(), nil)
}
