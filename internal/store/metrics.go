// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package store

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts durable store operations.
type Metrics struct {
	WritesTotal         prometheus.Counter
	ReadsTotal          prometheus.Counter
	RecoveriesTotal     prometheus.Counter
	BackupFailuresTotal prometheus.Counter
}

// NewMetrics creates and registers store metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WritesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playerstore_writes_total",
			Help: "Total number of durable file writes",
		}),
		ReadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playerstore_reads_total",
			Help: "Total number of successful file reads",
		}),
		RecoveriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playerstore_backup_recoveries_total",
			Help: "Total number of reads served by promoting the backup generation",
		}),
		BackupFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playerstore_backup_failures_total",
			Help: "Total number of best-effort backup copies that failed",
		}),
	}

	reg.MustRegister(m.WritesTotal)
	reg.MustRegister(m.ReadsTotal)
	reg.MustRegister(m.RecoveriesTotal)
	reg.MustRegister(m.BackupFailuresTotal)

	return m
}
