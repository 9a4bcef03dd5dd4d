package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

const (
	serviceNamespace = "subtrack"
	meterName        = "subtrack"
)

var (
	instrumentsOnce  sync.Once
	mutationsCounter otelmetric.Int64Counter
	sessionLoadTime  otelmetric.Float64Histogram
)

// registerInstruments creates the SubTrack instruments on the global meter provider.
// Instruments obtained before Initialize forward to the real provider once it is set.
func registerInstruments() {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(meterName)

		if counter, err := meter.Int64Counter(
			"subscription.mutations",
			otelmetric.WithDescription("Subscription store mutations by operation and result"),
		); err == nil {
			mutationsCounter = counter
		}

		if histogram, err := meter.Float64Histogram(
			"subscription.session.load.duration",
			otelmetric.WithDescription("Time to load an owner's records and vocabulary"),
			otelmetric.WithUnit("ms"),
		); err == nil {
			sessionLoadTime = histogram
		}
	})
}

func result(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("result", "error")
	}
	return attribute.String("result", "ok")
}

// RecordMutation counts one store mutation, tagged with its operation and outcome
func RecordMutation(ctx context.Context, op string, err error) {
	registerInstruments()
	if mutationsCounter == nil {
		return
	}
	mutationsCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("operation", op),
		result(err),
	))
}

// RecordSessionLoad records how long loading one owner session took.
// refetch distinguishes explicit reloads from first use.
func RecordSessionLoad(ctx context.Context, started time.Time, refetch bool, err error) {
	registerInstruments()
	if sessionLoadTime == nil {
		return
	}
	elapsed := float64(time.Since(started).Microseconds()) / 1000
	sessionLoadTime.Record(ctx, elapsed, otelmetric.WithAttributes(
		attribute.Bool("refetch", refetch),
		result(err),
	))
}
