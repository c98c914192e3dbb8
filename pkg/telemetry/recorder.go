// Package telemetry records savemirror counters through the OpenTelemetry
// metric API. A nil *Recorder is valid and records nothing.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jingkaihe/savemirror"

// Copy directions.
const (
	DirectionIn     = "in"
	DirectionOut    = "out"
	DirectionMirror = "mirror"
)

type Recorder struct {
	copyTotal      metric.Int64Counter
	copyBytesTotal metric.Int64Counter
	interceptTotal metric.Int64Counter
	initTotal      metric.Int64Counter
}

// NewRecorder registers instruments against mp, or the global provider
// when mp is nil.
func NewRecorder(mp metric.MeterProvider) *Recorder {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(meterName)

	r := &Recorder{}
	r.copyTotal, _ = m.Int64Counter("savemirror.copies.total",
		metric.WithDescription("Total mirror copy attempts"),
	)
	r.copyBytesTotal, _ = m.Int64Counter("savemirror.copy.bytes.total",
		metric.WithDescription("Bytes written by successful mirror copies"),
		metric.WithUnit("By"),
	)
	r.interceptTotal, _ = m.Int64Counter("savemirror.intercepts.total",
		metric.WithDescription("Total intercepted host operations"),
	)
	r.initTotal, _ = m.Int64Counter("savemirror.init.total",
		metric.WithDescription("Total initialization attempts"),
	)
	return r
}

func statusStr(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordCopy counts one copy attempt in the given direction.
func (r *Recorder) RecordCopy(ctx context.Context, direction string, n int64, err error) {
	if r == nil {
		return
	}
	r.copyTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("status", statusStr(err)),
	))
	if err == nil && n > 0 {
		r.copyBytesTotal.Add(ctx, n, metric.WithAttributes(
			attribute.String("direction", direction),
		))
	}
}

// RecordIntercept counts one host operation passing through the engine.
func (r *Recorder) RecordIntercept(ctx context.Context, op string, err error) {
	if r == nil {
		return
	}
	r.interceptTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", statusStr(err)),
	))
}

// RecordInit counts an initialization attempt and whether it reached ready.
func (r *Recorder) RecordInit(ctx context.Context, err error) {
	if r == nil {
		return
	}
	r.initTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", statusStr(err)),
	))
}
