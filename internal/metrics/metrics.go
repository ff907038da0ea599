// Package metrics holds the prometheus collectors shared by the relay,
// bootstrapper, scheduler and worker, and the HTTP server that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rug"

// BootstrapState values reported by the rug_bootstrap_state gauge.
const (
	BootstrapRunning    = 0
	BootstrapDone       = 1
	BootstrapAuthFailed = 2
	BootstrapFailed     = 3
	BootstrapCancelled  = 4
)

var (
	BootstrapAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bootstrap",
		Name:      "attempts_total",
		Help:      "Router listing calls made by the bootstrapper.",
	})

	BootstrapRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bootstrap",
		Name:      "retries_total",
		Help:      "Transient router listing failures that were retried.",
	})

	BootstrapEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bootstrap",
		Name:      "events_total",
		Help:      "POLL events submitted to the scheduler by the bootstrapper.",
	})

	BootstrapState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "bootstrap",
		Name:      "state",
		Help:      "Bootstrap state: 0 running, 1 done, 2 auth failed, 3 failed, 4 cancelled.",
	})

	RelayMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "relay",
		Name:      "messages_total",
		Help:      "Notifications forwarded from the queue to the scheduler.",
	}, []string{"crud"})

	ListenerDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "listener",
		Name:      "decode_errors_total",
		Help:      "Bus records that could not be decoded into events.",
	})

	SchedulerQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "queue_depth",
		Help:      "Events waiting in the scheduler across all keys.",
	})

	WorkerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "events_total",
		Help:      "Events handled by the worker, by operation kind.",
	}, []string{"crud"})

	WorkerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "errors_total",
		Help:      "Events whose handling returned an error.",
	})
)
