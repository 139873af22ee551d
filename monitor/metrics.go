package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LatestHeadBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "monitor",
		Subsystem: "tracker",
		Name:      "head_block",
		Help:      "Shows the latest head block (minus confirmations) observed for the deposit contract.",
	}, []string{"chain_id", "address"})
	LatestProcessedBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "monitor",
		Subsystem: "tracker",
		Name:      "processed_block",
		Help:      "Shows the scan cursor. Deposits up to this block are already stored and notified.",
	}, []string{"chain_id", "address"})
	SyncedTracker = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "monitor",
		Subsystem: "tracker",
		Name:      "synced",
		Help:      "Shows 1 if the tracker is considered as synced up to chain head.",
	}, []string{"chain_id", "address"})
	TrackerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "monitor",
		Subsystem: "tracker",
		Name:      "state",
		Help:      "Shows the current tracker state: 0 initializing, 1 polling, 2 processing, 3 backoff.",
	}, []string{"chain_id", "address"})
	DepositsFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "monitor",
		Subsystem: "tracker",
		Name:      "deposits_total",
		Help:      "Number of deposits stored by the tracker.",
	}, []string{"chain_id", "address"})
	MalformedDeposits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "monitor",
		Subsystem: "tracker",
		Name:      "malformed_deposits_total",
		Help:      "Number of transactions to the deposit contract skipped because of undecodable call data.",
	}, []string{"chain_id", "address"})
)
