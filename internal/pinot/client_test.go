package pinot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestClient_Query(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/query/sql" {
			t.Errorf("request = %s %s, want POST /query/sql", r.Method, r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !strings.Contains(req["sql"], "transactions_rt") {
			t.Errorf("sql = %q, want table name present", req["sql"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"resultTable": {
				"dataSchema": {"columnNames": ["user_seq", "label"]},
				"rows": [[42, 1], [43, 0]]
			}
		}`))
	})

	result, err := client.Query(context.Background(), "SELECT user_seq, label FROM transactions_rt LIMIT 2")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(result.Columns) != 2 || result.Columns[0] != "user_seq" {
		t.Errorf("Columns = %v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	if got := result.Rows[0][0].(float64); got != 42 {
		t.Errorf("Rows[0][0] = %v, want 42", got)
	}
}

func TestClient_QueryEmptyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	result, err := client.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Columns) != 0 || len(result.Rows) != 0 {
		t.Errorf("result = %+v, want empty table", result)
	}
}

func TestClient_QueryExceptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"exceptions": [{"errorCode": 410, "message": "BrokerResourceMissingError"}]
		}`))
	})

	_, err := client.Query(context.Background(), "SELECT * FROM missing_table")
	if err == nil {
		t.Fatal("Query() error = nil, want broker exception")
	}
	if !strings.Contains(err.Error(), "410") || !strings.Contains(err.Error(), "BrokerResourceMissingError") {
		t.Errorf("error = %v, want code and message surfaced", err)
	}
}

func TestClient_QueryHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broker overloaded", http.StatusServiceUnavailable)
	})

	_, err := client.Query(context.Background(), "SELECT 1")
	if err == nil {
		t.Fatal("Query() error = nil, want status error")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v, want status code surfaced", err)
	}
}

func TestClient_QueryContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Query(ctx, "SELECT 1"); err == nil {
		t.Fatal("Query() error = nil, want context deadline error")
	}
}
