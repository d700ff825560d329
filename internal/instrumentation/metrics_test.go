package instrumentation

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

// sumByAttr collects the named counter and sums its data points by the
// value of attribute key.
func sumByAttr(t *testing.T, reader *sdkmetric.ManualReader, name, key string) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, not an int64 sum", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(key))
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestMetrics_RecordEWSOperation(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordEWSOperation(ctx, OperationGetUserAvailability, StatusSuccess, "jane@example.com", 200*time.Millisecond)
	m.RecordEWSOperation(ctx, OperationGetUserAvailability, StatusSuccess, "bob@example.com", 100*time.Millisecond)
	m.RecordEWSOperation(ctx, OperationGetUserAvailability, StatusError, "jane@example.com", time.Second)

	byStatus := sumByAttr(t, reader, "ews_operations_total", attrStatus)
	if byStatus[StatusSuccess] != 2 || byStatus[StatusError] != 1 {
		t.Errorf("unexpected counts by status: %v", byStatus)
	}

	byDomain := sumByAttr(t, reader, "ews_operations_total", attrDomain)
	if byDomain["example.com"] != 0 {
		t.Errorf("mailbox domain should not be recorded without detailed labels: %v", byDomain)
	}
}

func TestMetrics_RecordEWSOperation_DetailedLabels(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, true)

	m.RecordEWSOperation(ctx, OperationSend, StatusSuccess, "jane@Example.com", time.Millisecond)

	byDomain := sumByAttr(t, reader, "ews_operations_total", attrDomain)
	if byDomain["example.com"] != 1 {
		t.Errorf("expected one operation for example.com, got %v", byDomain)
	}
}

func TestMetrics_RecordDecodeError(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordDecodeError(ctx, &availability.UnknownItemTypeError{Tag: "Appointment"})
	m.RecordDecodeError(ctx, &availability.StatusCodeError{Position: 1, Code: '7'})
	m.RecordDecodeError(ctx, errors.New("connection reset"))
	m.RecordDecodeError(ctx, nil)

	byKind := sumByAttr(t, reader, "availability_decode_errors_total", attrKind)
	want := map[string]int64{
		ErrorKindUnknownItem: 1,
		ErrorKindStatusCode:  1,
		ErrorKindOther:       1,
	}
	for kind, n := range want {
		if byKind[kind] != n {
			t.Errorf("kind %s: got %d, want %d", kind, byKind[kind], n)
		}
	}
}

func TestMetrics_RecordStatusSlots(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordStatusSlots(ctx, map[string]int{"Free": 3, "Busy": 2, "OOF": 0})

	byStatus := sumByAttr(t, reader, "availability_status_slots_total", attrStatus)
	if byStatus["Free"] != 3 || byStatus["Busy"] != 2 {
		t.Errorf("unexpected slot counts: %v", byStatus)
	}
	if _, ok := byStatus["OOF"]; ok {
		t.Error("zero counts should not be recorded")
	}
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordToolInvocation(ctx, "ews_get_user_availability", StatusSuccess, 50*time.Millisecond)
	m.RecordToolInvocation(ctx, "ews_get_user_availability", StatusError, 10*time.Millisecond)

	byTool := sumByAttr(t, reader, "mcp_tool_invocations_total", attrTool)
	if byTool["ews_get_user_availability"] != 2 {
		t.Errorf("expected 2 invocations, got %v", byTool)
	}
}

func TestMetrics_Uninitialized(t *testing.T) {
	ctx := context.Background()
	m := &Metrics{}

	// Should not panic
	m.RecordEWSOperation(ctx, OperationSend, StatusSuccess, "", time.Second)
	m.RecordDecodeError(ctx, errors.New("x"))
	m.RecordStatusSlots(ctx, map[string]int{"Free": 1})
	m.RecordToolInvocation(ctx, "tool", StatusSuccess, time.Second)
}
