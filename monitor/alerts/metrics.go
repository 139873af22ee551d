package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var AlertDuplicateDeposit = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "alert",
	Subsystem: "monitor",
	Name:      "duplicate_deposit",
	Help:      "Shows deposit transactions which were stored more than once.",
}, []string{"tx_hash", "block_number"})
