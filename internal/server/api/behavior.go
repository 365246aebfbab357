package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Monitor is the CommonBehavior surface of a running component.
type Monitor interface {
	Period() time.Duration
	SetPeriod(time.Duration) error
	TimeAwake() time.Duration
	Kill()
	Parameters() map[string]string
	SetParameters(map[string]string) error
	Reload() error
	State() string
}

// BehaviorHandler exposes a Monitor under /api/behavior/.
type BehaviorHandler struct {
	monitor Monitor
}

// NewBehaviorHandler creates a BehaviorHandler for m.
func NewBehaviorHandler(m Monitor) *BehaviorHandler {
	return &BehaviorHandler{monitor: m}
}

type periodMessage struct {
	Period int64 `json:"period"`
}

type uptimeResponse struct {
	TimeAwake int64 `json:"timeAwake"`
}

type stateResponse struct {
	State string `json:"state"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// ServeHTTP routes /api/behavior/{period,uptime,kill,parameters,reload,state}.
func (h *BehaviorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/behavior"), "/")

	switch action {
	case "period":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, periodMessage{Period: h.monitor.Period().Milliseconds()})
		case http.MethodPut:
			h.setPeriod(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case "uptime":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, uptimeResponse{TimeAwake: int64(h.monitor.TimeAwake().Seconds())})

	case "kill":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusAccepted, statusResponse{Status: "stopping"})
		h.monitor.Kill()

	case "parameters":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, h.monitor.Parameters())
		case http.MethodPut:
			h.setParameters(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case "reload":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := h.monitor.Reload(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.monitor.Parameters())

	case "state":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, stateResponse{State: h.monitor.State()})

	default:
		http.NotFound(w, r)
	}
}

func (h *BehaviorHandler) setPeriod(w http.ResponseWriter, r *http.Request) {
	var req periodMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Period <= 0 {
		writeError(w, http.StatusBadRequest, "Period must be positive")
		return
	}

	if err := h.monitor.SetPeriod(time.Duration(req.Period) * time.Millisecond); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, periodMessage{Period: h.monitor.Period().Milliseconds()})
}

func (h *BehaviorHandler) setParameters(w http.ResponseWriter, r *http.Request) {
	var params map[string]string
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.monitor.SetParameters(params); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.monitor.Parameters())
}
