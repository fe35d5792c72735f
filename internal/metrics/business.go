// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors of the bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	browseRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stbbridge_browse_requests_total",
		Help: "Recording browse requests by level and outcome",
	}, []string{"level", "outcome"}) // level=root|show|singles outcome=success|failure

	entriesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stbbridge_recordings_entries_skipped_total",
		Help: "Recording entries skipped because their kind was not recognised",
	}, []string{"kind"})

	channelMapSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stbbridge_channel_map_size",
		Help: "Distinct display titles in the channel map of each box",
	}, []string{"box"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stbbridge_box_commands_total",
		Help: "Commands sent to set-top boxes by command and outcome",
	}, []string{"command", "outcome"})

	setupAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stbbridge_setup_attempts_total",
		Help: "Config flow submissions by result",
	}, []string{"result"}) // result=created|cannot_connect|invalid_auth|unknown

	recordingCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stbbridge_recording_capacity_percent",
		Help: "Last reported DVR recording capacity in percent",
	})
)

// RecordBrowse counts a browse request.
func RecordBrowse(level string, err error) {
	browseRequests.WithLabelValues(level, outcome(err)).Inc()
}

// RecordSkippedEntry counts a recording entry dropped from a browse tree.
func RecordSkippedEntry(kind string) {
	if kind == "" {
		kind = "empty"
	}
	entriesSkipped.WithLabelValues(kind).Inc()
}

// SetChannelMapSize records the channel map size for a box.
func SetChannelMapSize(box string, n int) {
	channelMapSize.WithLabelValues(box).Set(float64(n))
}

// RecordCommand counts a command sent to a box.
func RecordCommand(command string, err error) {
	commandsTotal.WithLabelValues(command, outcome(err)).Inc()
}

// RecordSetupAttempt counts a config flow submission.
func RecordSetupAttempt(result string) {
	setupAttempts.WithLabelValues(result).Inc()
}

// SetRecordingCapacity records the last DVR capacity reading.
func SetRecordingCapacity(percent float64) {
	recordingCapacity.Set(percent)
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
