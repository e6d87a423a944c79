/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package correlation

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/correlator/pkg/models"
)

const (
	meterName = "github.com/carverauto/correlator/pkg/correlation"

	metricResultsTotal    = "correlation_results_total"
	metricWarningsTotal   = "correlation_warnings_total"
	metricSubmittedTotal  = "correlation_executions_submitted_total"
	metricWaitDurationSec = "correlation_execution_wait_seconds"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	resultsCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	warningsCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	submittedCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	waitHistogram metric.Float64Histogram
)

func initMeter() {
	meter := otel.Meter(meterName)

	var err error

	resultsCounter, err = meter.Int64Counter(
		metricResultsTotal,
		metric.WithDescription("Correlations yielded, by reason"),
	)
	if err != nil {
		otel.Handle(err)
	}

	warningsCounter, err = meter.Int64Counter(
		metricWarningsTotal,
		metric.WithDescription("Correlation warnings yielded, by notification type"),
	)
	if err != nil {
		otel.Handle(err)
	}

	submittedCounter, err = meter.Int64Counter(
		metricSubmittedTotal,
		metric.WithDescription("Shell actions submitted for execution-based correlation"),
	)
	if err != nil {
		otel.Handle(err)
	}

	waitHistogram, err = meter.Float64Histogram(
		metricWaitDurationSec,
		metric.WithDescription("Time spent waiting for correlation executions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

func recordCorrelation(ctx context.Context, reason models.CorrelationReason) {
	meterOnce.Do(initMeter)
	if resultsCounter == nil {
		return
	}

	resultsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
}

func recordWarning(ctx context.Context, notificationType string) {
	meterOnce.Do(initMeter)
	if warningsCounter == nil {
		return
	}

	warningsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("type", notificationType)))
}

func recordSubmitted(ctx context.Context, count int) {
	if count == 0 {
		return
	}

	meterOnce.Do(initMeter)
	if submittedCounter == nil {
		return
	}

	submittedCounter.Add(ctx, int64(count))
}

func recordWait(ctx context.Context, elapsed time.Duration, timedOut bool) {
	meterOnce.Do(initMeter)
	if waitHistogram == nil {
		return
	}

	waitHistogram.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.Bool("timed_out", timedOut)))
}
