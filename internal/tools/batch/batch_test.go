package batch

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		paramName string
		want      []string
		wantErr   bool
	}{
		{
			name:      "single string",
			input:     "jane@example.com",
			paramName: "mailboxes",
			want:      []string{"jane@example.com"},
		},
		{
			name:      "array of strings",
			input:     []interface{}{"jane@example.com", "room.4@example.com"},
			paramName: "mailboxes",
			want:      []string{"jane@example.com", "room.4@example.com"},
		},
		{
			name:      "nil input",
			input:     nil,
			paramName: "mailboxes",
			wantErr:   true,
		},
		{
			name:      "empty string",
			input:     "",
			paramName: "mailboxes",
			wantErr:   true,
		},
		{
			name:      "empty array",
			input:     []interface{}{},
			paramName: "mailboxes",
			wantErr:   true,
		},
		{
			name:      "array with non-string",
			input:     []interface{}{"jane@example.com", 123},
			paramName: "mailboxes",
			wantErr:   true,
		},
		{
			name:      "array with empty string",
			input:     []interface{}{"jane@example.com", ""},
			paramName: "mailboxes",
			wantErr:   true,
		},
		{
			name:      "invalid type",
			input:     123,
			paramName: "mailboxes",
			wantErr:   true,
		},
		{
			name:      "JSON string array",
			input:     `["jane@example.com", "room.4@example.com"]`,
			paramName: "mailboxes",
			want:      []string{"jane@example.com", "room.4@example.com"},
		},
		{
			name:      "JSON string empty array",
			input:     `[]`,
			paramName: "mailboxes",
			wantErr:   true,
		},
		{
			name:      "invalid JSON string",
			input:     `[invalid json`,
			paramName: "mailboxes",
			want:      []string{`[invalid json`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseStringOrArray() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !stringSliceEqual(got, tt.want) {
				t.Errorf("ParseStringOrArray() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		{ID: "jane@example.com", Status: StatusSuccess, Result: "0021"},
		{ID: "room.4@example.com", Status: StatusSuccess, Result: "0000"},
		{ID: "bob@example.com", Status: StatusError, Error: "mailbox not found"},
	}

	output := FormatResults(results)

	var br BatchResult
	if err := json.Unmarshal([]byte(output), &br); err != nil {
		t.Fatalf("Failed to parse output JSON: %v", err)
	}

	if br.Total != 3 {
		t.Errorf("Total = %d, want 3", br.Total)
	}
	if br.Successful != 2 {
		t.Errorf("Successful = %d, want 2", br.Successful)
	}
	if br.Failed != 1 {
		t.Errorf("Failed = %d, want 1", br.Failed)
	}
	if len(br.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(br.Results))
	}
}

func TestProcessBatch(t *testing.T) {
	ids := []string{"a@example.com", "b@example.com", "c@example.com"}

	fn := func(_ context.Context, id string) (string, error) {
		if id == "b@example.com" {
			return "", errors.New("mailbox not found")
		}
		// finish out of order
		if id == "a@example.com" {
			time.Sleep(10 * time.Millisecond)
		}
		return "looked up " + id, nil
	}

	results := ProcessBatch(context.Background(), ids, 3, fn)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, id := range ids {
		if results[i].ID != id {
			t.Errorf("results[%d].ID = %s, want %s", i, results[i].ID, id)
		}
	}
	if results[0].Status != StatusSuccess || results[0].Result != "looked up a@example.com" {
		t.Errorf("unexpected results[0] %+v", results[0])
	}
	if results[1].Status != StatusError || results[1].Error != "mailbox not found" {
		t.Errorf("unexpected results[1] %+v", results[1])
	}
	if results[2].Status != StatusSuccess {
		t.Errorf("unexpected results[2] %+v", results[2])
	}
}

func TestProcessBatch_Concurrency(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}

	var inFlight, peak atomic.Int32
	fn := func(_ context.Context, id string) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return id, nil
	}

	results := ProcessBatch(context.Background(), ids, 2, fn)

	if len(results) != len(ids) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(ids))
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", got)
	}
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := ProcessBatch(ctx, []string{"a", "b"}, 0, func(context.Context, string) (string, error) {
		calls.Add(1)
		return "", nil
	})

	if calls.Load() != 0 {
		t.Errorf("fn called %d times after cancellation", calls.Load())
	}
	for _, r := range results {
		if r.Status != StatusError || r.Error != context.Canceled.Error() {
			t.Errorf("unexpected result %+v", r)
		}
	}
}

func TestNewSuccessResult(t *testing.T) {
	result := NewSuccessResult("test-id", "test message")

	if result.ID != "test-id" {
		t.Errorf("ID = %s, want test-id", result.ID)
	}
	if result.Status != StatusSuccess {
		t.Errorf("Status = %s, want success", result.Status)
	}
	if result.Result != "test message" {
		t.Errorf("Result = %s, want 'test message'", result.Result)
	}
	if result.Error != "" {
		t.Errorf("Error should be empty, got %s", result.Error)
	}
}

func TestNewErrorResult(t *testing.T) {
	result := NewErrorResult("test-id", errors.New("test error"))

	if result.ID != "test-id" {
		t.Errorf("ID = %s, want test-id", result.ID)
	}
	if result.Status != StatusError {
		t.Errorf("Status = %s, want error", result.Status)
	}
	if result.Error != "test error" {
		t.Errorf("Error = %s, want 'test error'", result.Error)
	}
	if result.Result != "" {
		t.Errorf("Result should be empty, got %s", result.Result)
	}
}

// Helper function to compare string slices
func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
