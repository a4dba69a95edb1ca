package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rescuedogs/rescue-edge/internal/telemetry"
)

type errorReport struct {
	URL        string `json:"url"`
	Preset     string `json:"preset"`
	Message    string `json:"message"`
	Connection string `json:"connection"`
	Retry      int    `json:"retry"`
}

type loadReport struct {
	URL        string  `json:"url"`
	Preset     string  `json:"preset"`
	DurationMs float64 `json:"duration_ms"`
	Connection string  `json:"connection"`
}

type networkReport struct {
	EffectiveType string  `json:"effective_type"`
	DownlinkMbps  float64 `json:"downlink_mbps"`
	RTTMillis     int     `json:"rtt_ms"`
	SaveData      bool    `json:"save_data"`
}

func (a *API) recordError(w http.ResponseWriter, r *http.Request) {
	var in errorReport
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid error report")
		return
	}
	if strings.TrimSpace(in.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	a.telemetry.RecordError(telemetry.ErrorRecord{
		URL:        in.URL,
		Preset:     in.Preset,
		Message:    in.Message,
		Connection: in.Connection,
		Retry:      in.Retry,
	})
	w.WriteHeader(http.StatusAccepted)
}

func (a *API) recordLoad(w http.ResponseWriter, r *http.Request) {
	var in loadReport
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid load report")
		return
	}
	if in.DurationMs < 0 {
		writeError(w, http.StatusBadRequest, "duration_ms must not be negative")
		return
	}
	a.telemetry.RecordLoad(telemetry.LoadSample{
		URL:        in.URL,
		Preset:     in.Preset,
		Duration:   time.Duration(in.DurationMs * float64(time.Millisecond)),
		Connection: in.Connection,
	})
	w.WriteHeader(http.StatusAccepted)
}

func (a *API) recordNetwork(w http.ResponseWriter, r *http.Request) {
	var in networkReport
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid network report")
		return
	}
	a.telemetry.RecordNetwork(telemetry.NetworkSample{
		EffectiveType: in.EffectiveType,
		DownlinkMbps:  in.DownlinkMbps,
		RTTMillis:     in.RTTMillis,
		SaveData:      in.SaveData,
	})
	w.WriteHeader(http.StatusAccepted)
}

func (a *API) telemetrySnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.telemetry.Snapshot())
}
