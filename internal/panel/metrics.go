package panel

import "github.com/prometheus/client_golang/prometheus"

var (
	instancesByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "webpanel",
			Subsystem: "registry",
			Name:      "instances",
			Help:      "Live panel instances by engine state.",
		},
		[]string{"state"},
	)
	instancesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "registry", Name: "instances_created_total",
		Help: "Panel instances created.",
	})
	instancesDisposed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "registry", Name: "instances_disposed_total",
		Help: "Panel instances disposed (closed, purged or shut down).",
	})
	instancesPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "registry", Name: "instances_purged_total",
		Help: "Panel instances removed because their window died.",
	})
	initAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "engine", Name: "init_attempts_total",
		Help: "Engine initialization attempts.",
	})
	initFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "engine", Name: "init_failures_total",
		Help: "Engine initialization failures by stage.",
	}, []string{"stage"})
	initLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "webpanel", Subsystem: "engine", Name: "init_seconds",
		Help:    "Time from instance creation to engine ready.",
		Buckets: prometheus.DefBuckets,
	})
	navigations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "engine", Name: "navigations_total",
		Help: "Navigations issued to engine sessions.",
	})
	callbacksSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "engine", Name: "callbacks_skipped_total",
		Help: "Engine callbacks dropped because their instance was gone.",
	}, []string{"callback"})
	focusEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "focus", Name: "events_total",
		Help: "Focus notifications by kind.",
	}, []string{"kind"})
	findSessions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "find", Name: "sessions_total",
		Help: "Find sessions started or updated.",
	})
	findImplicitAdvances = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "webpanel", Subsystem: "find", Name: "implicit_advances_total",
		Help: "Implicit first-match activations.",
	})
)

func init() {
	prometheus.MustRegister(
		instancesByState,
		instancesCreated,
		instancesDisposed,
		instancesPurged,
		initAttempts,
		initFailures,
		initLatency,
		navigations,
		callbacksSkipped,
		focusEvents,
		findSessions,
		findImplicitAdvances,
	)
}
