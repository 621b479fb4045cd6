package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the game engine collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	SessionsStarted  prometheus.Counter
	QuestionsServed  prometheus.Counter
	GamesCompleted   prometheus.Counter
	Answers          *prometheus.CounterVec
	Conflicts        *prometheus.CounterVec
	PoolExhausted    prometheus.Counter
	OperationLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "engine",
			Name:      "sessions_started_total",
			Help:      "Games created by StartSession.",
		}),
		QuestionsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "engine",
			Name:      "questions_served_total",
			Help:      "GameQuestion records committed.",
		}),
		GamesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "engine",
			Name:      "games_completed_total",
			Help:      "Games whose last requested question was served.",
		}),
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "engine",
			Name:      "answers_total",
			Help:      "Submitted answers by correctness.",
		}, []string{"correct"}),
		Conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "engine",
			Name:      "conflicts_total",
			Help:      "Concurrency conflicts by operation.",
		}, []string{"op"}),
		PoolExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "engine",
			Name:      "pool_exhausted_total",
			Help:      "Selections that found no unseen question.",
		}),
		OperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quiz",
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Engine operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
	}
	reg.MustRegister(
		m.SessionsStarted,
		m.QuestionsServed,
		m.GamesCompleted,
		m.Answers,
		m.Conflicts,
		m.PoolExhausted,
		m.OperationLatency,
	)
	return m
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

func (m *Metrics) QuestionServed() {
	if m == nil {
		return
	}
	m.QuestionsServed.Inc()
}

func (m *Metrics) GameCompleted() {
	if m == nil {
		return
	}
	m.GamesCompleted.Inc()
}

func (m *Metrics) Answered(correct bool) {
	if m == nil {
		return
	}
	label := "false"
	if correct {
		label = "true"
	}
	m.Answers.WithLabelValues(label).Inc()
}

func (m *Metrics) Conflict(op string) {
	if m == nil {
		return
	}
	m.Conflicts.WithLabelValues(op).Inc()
}

func (m *Metrics) Exhausted() {
	if m == nil {
		return
	}
	m.PoolExhausted.Inc()
}

// Observe records the latency of op since start.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OperationLatency.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
