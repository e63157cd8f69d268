package narration

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

func index(v float64) *float64 { return &v }

func TestSelection(t *testing.T) {
	tests := []struct {
		name   string
		index  *float64
		want   int
		wantOK bool
	}{
		{name: "null", index: nil},
		{name: "first", index: index(0), want: 0, wantOK: true},
		{name: "last", index: index(2), want: 2, wantOK: true},
		{name: "out of range", index: index(3)},
		{name: "negative", index: index(-1)},
		{name: "fractional", index: index(1.5)},
		{name: "nan", index: index(math.NaN())},
		{name: "inf", index: index(math.Inf(1))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Response{SelectedIndex: tc.index}.Selection(3)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("selection = %d, %v; want %d, %v", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestHTTPNarratorChoose(t *testing.T) {
	var seen Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &seen); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"selectedIndex": 1, "reason": "the road calls", "contract": {"tone": "grim"}}`))
	}))
	defer srv.Close()

	n, err := NewHTTPNarrator(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new narrator: %v", err)
	}
	resp, err := n.Choose(context.Background(), Request{
		Query: "what next",
		Candidates: []Candidate{
			{TransitionID: "a", EntityType: entity.Quest},
			{TransitionID: "b", EntityType: entity.Trade},
		},
	})
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got, ok := resp.Selection(2); !ok || got != 1 {
		t.Fatalf("selection = %d, %v; want 1", got, ok)
	}
	if resp.Reason != "the road calls" || len(resp.Contract) == 0 {
		t.Fatalf("response = %+v", resp)
	}
	if len(seen.Candidates) != 2 || seen.Query != "what next" {
		t.Fatalf("request = %+v", seen)
	}
}

func TestHTTPNarratorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n, err := NewHTTPNarrator(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new narrator: %v", err)
	}
	if _, err := n.Choose(context.Background(), Request{}); err == nil {
		t.Fatal("expected error for 503")
	}
	if _, err := NewHTTPNarrator(" ", 0); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
