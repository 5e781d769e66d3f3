package main

import (
	"encoding/json"
	"net/http"

	"wasim/internal/metrics"
	"wasim/internal/tracing"

	"github.com/sirupsen/logrus"
)

// handleMetrics refreshes the store size gauges and returns every metric
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestInfo := tracing.GetRequestInfo(r.Context())

		messages := 0
		chats := s.store.Chats()
		for _, chat := range chats {
			messages += len(chat.Messages)
		}
		registry := metrics.GetRegistry()
		registry.SetStoreSize(len(chats), messages, len(s.store.Contacts()))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(registry.GetAllMetrics()); err != nil {
			s.logger.WithFields(logrus.Fields{
				"request_id": requestInfo.RequestID,
				"trace_id":   requestInfo.TraceID,
			}).WithError(err).Error("Failed to encode metrics response")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}
}
