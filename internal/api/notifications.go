package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/types"
)

// notifyRequest is the POST /api/v1/notifications body. It mirrors
// types.NotificationRequest with the event kind still raw for validation.
type notifyRequest struct {
	EventKind   string            `json:"event_kind"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Channel     string            `json:"channel"`
	ChannelKind string            `json:"channel_kind"`
	Context     map[string]string `json:"context"`
	Blocks      []map[string]any  `json:"blocks"`
	Attachments []map[string]any  `json:"attachments"`
	ThreadTS    string            `json:"thread_ts"`
	Priority    string            `json:"priority"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var body notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	kind, err := types.ParseEventKind(body.EventKind)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	req := types.NotificationRequest{
		EventKind:   kind,
		Title:       body.Title,
		Message:     body.Message,
		Channel:     body.Channel,
		Context:     body.Context,
		Blocks:      body.Blocks,
		Attachments: body.Attachments,
		ThreadTS:    body.ThreadTS,
	}
	if body.ChannelKind != "" {
		ck, err := types.ParseChannelKind(body.ChannelKind)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		req.ChannelKind = ck
	}
	if body.Priority != "" {
		p, err := types.ParsePriority(body.Priority)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		req.Priority = p
	} else {
		req.Priority = types.DefaultPriority(kind)
	}

	resp := s.engine.Deliver(r.Context(), req)
	switch {
	case resp.Success:
		writeJSON(w, http.StatusOK, resp)
	case resp.Error == "rate_limited":
		w.Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests, resp)
	default:
		writeJSON(w, http.StatusBadGateway, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
