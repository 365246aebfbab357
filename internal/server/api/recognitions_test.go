package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robocomp/gesturecomp/internal/types"
)

func TestRecognitionsHandler_List(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.UnixMilli(1700000000000)
	for i := 0; i < 60; i++ {
		err := s.Record(ctx, &types.Recognition{
			ID:           fmt.Sprintf("rec-%02d", i),
			GestureIndex: i % 5,
			NumFrames:    64,
			CreatedAt:    base.Add(time.Duration(i) * time.Millisecond),
		})
		if err != nil {
			t.Fatalf("failed to record: %v", err)
		}
	}

	handler := NewRecognitionsHandler(s)

	tests := []struct {
		name      string
		url       string
		wantCount int
		wantFirst string
	}{
		{"default limit", "/api/recognitions", DefaultRecentLimit, "rec-59"},
		{"explicit limit", "/api/recognitions?limit=5", 5, "rec-59"},
		{"limit above count", "/api/recognitions?limit=100", 60, "rec-59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}

			var response listRecognitionsResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Recognitions) != tt.wantCount {
				t.Errorf("expected %d recognitions, got %d", tt.wantCount, len(response.Recognitions))
			}
			if response.Recognitions[0].ID != tt.wantFirst {
				t.Errorf("first = %q, want %q", response.Recognitions[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestRecognitionsHandler_Empty(t *testing.T) {
	handler := NewRecognitionsHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/recognitions", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// An empty log is an empty array, not null
	if body := w.Body.String(); body != "{\"recognitions\":[]}\n" {
		t.Errorf("body = %q", body)
	}
}

func TestRecognitionsHandler_InvalidLimit(t *testing.T) {
	handler := NewRecognitionsHandler(newTestStore(t))

	for _, limit := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/recognitions?limit="+limit, nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected status %d, got %d", limit, http.StatusBadRequest, w.Code)
		}
	}
}
