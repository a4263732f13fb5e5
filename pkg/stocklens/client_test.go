package stocklens

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stocklens/internal/domain"
)

func TestGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"AAPL","name":"Apple Inc.","price":178.42,"changePercent":1.24,"isDemo":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	q, err := c.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if q.Symbol != "AAPL" || q.Name != "Apple Inc." || q.Price != 178.42 || q.ChangePercent != 1.24 {
		t.Errorf("quote mismatch: %+v", q)
	}
	if q.IsDemo {
		t.Error("live quote should not be marked demo")
	}
}

func TestGetQuoteRejectsInvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"symbol": "AAPL", "price":`},
		{"zero price", `{"symbol":"AAPL","name":"Apple","price":0}`},
		{"missing symbol", `{"name":"Apple","price":100}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			if _, err := NewClient(srv.URL).GetQuote(context.Background(), "AAPL"); err == nil {
				t.Error("expected error for invalid payload")
			}
		})
	}
}

func TestGetQuoteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).GetQuote(context.Background(), "AAPL"); err == nil {
		t.Error("expected error for 502 response")
	}
}

func TestGetHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("period"); got != "1mo" {
			t.Errorf("period = %q, want 1mo", got)
		}
		w.Write([]byte(`{"symbol":"AAPL","period":"1mo","data":[
			{"date":"2024-06-03","price":100,"open":99,"high":102,"low":98,"volume":1000},
			{"date":"2024-06-04","price":101,"open":100,"high":103,"low":99,"volume":1100}
		]}`))
	}))
	defer srv.Close()

	series, err := NewClient(srv.URL).GetHistory(context.Background(), "AAPL", domain.Period1Mo)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d points, want 2", len(series))
	}
	if series[0].Date.Format("2006-01-02") != "2024-06-03" {
		t.Errorf("first date = %s", series[0].Date.Format("2006-01-02"))
	}
	if err := series.Validate(); err != nil {
		t.Errorf("series invalid: %v", err)
	}
}

func TestGetHistoryRejectsEmptyAndUnordered(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"data":[]}`},
		{"bad date", `{"data":[{"date":"June 3rd","price":100}]}`},
		{"descending", `{"data":[
			{"date":"2024-06-04","price":100},
			{"date":"2024-06-03","price":101}
		]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			if _, err := NewClient(srv.URL).GetHistory(context.Background(), "AAPL", domain.Period1Mo); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"healthy","service":"StockLens"}`))
	}))
	defer srv.Close()

	ok, err := NewClient(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !ok {
		t.Error("Health = false against healthy server")
	}
}

func TestHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // connection refused from here on

	ok, err := NewClient(srv.URL).Health(context.Background())
	if err == nil {
		t.Error("expected error against closed server")
	}
	if ok {
		t.Error("Health must be false on error")
	}
}

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ask" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"response":"AAPL looks strong.","status":"success"}`))
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL).Ask(context.Background(), "what about AAPL?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "AAPL looks strong." {
		t.Errorf("reply = %q", reply)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	// FromDomain and ToDomain must agree on the date format.
	series := domain.HistorySeries{
		{Date: mustDate(t, "2024-06-03"), Price: 100, Open: 99, High: 102, Low: 98, Volume: 5},
	}
	back, err := ToDomain(FromDomain(series))
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if !back[0].Date.Equal(series[0].Date) || back[0].Price != series[0].Price {
		t.Errorf("round trip mismatch: %+v vs %+v", back[0], series[0])
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}
