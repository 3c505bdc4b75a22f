// Package pinot provides a read-side client for the Apache Pinot broker
// SQL endpoint. It shares no state with the streaming pipeline.
package pinot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client executes SQL against a Pinot broker over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the broker at baseURL
// (e.g. "http://broker:8099").
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ResultTable is a decoded Pinot query result.
type ResultTable struct {
	Columns []string
	Rows    [][]any
}

type queryRequest struct {
	SQL string `json:"sql"`
}

type queryResponse struct {
	ResultTable *struct {
		DataSchema struct {
			ColumnNames []string `json:"columnNames"`
		} `json:"dataSchema"`
		Rows [][]any `json:"rows"`
	} `json:"resultTable"`
	Exceptions []struct {
		ErrorCode int    `json:"errorCode"`
		Message   string `json:"message"`
	} `json:"exceptions"`
}

// Query runs a SQL statement and returns the result table. Broker-side
// exceptions surface as errors.
func (c *Client) Query(ctx context.Context, sql string) (*ResultTable, error) {
	body, err := json.Marshal(queryRequest{SQL: sql})
	if err != nil {
		return nil, fmt.Errorf("pinot: failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query/sql", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("pinot: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinot: query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("pinot: broker returned %d: %s", resp.StatusCode, data)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("pinot: failed to decode response: %w", err)
	}

	if len(decoded.Exceptions) > 0 {
		first := decoded.Exceptions[0]
		return nil, fmt.Errorf("pinot: query failed with %d exception(s), first: code=%d %s",
			len(decoded.Exceptions), first.ErrorCode, first.Message)
	}

	result := &ResultTable{}
	if decoded.ResultTable != nil {
		result.Columns = decoded.ResultTable.DataSchema.ColumnNames
		result.Rows = decoded.ResultTable.Rows
	}
	return result, nil
}
