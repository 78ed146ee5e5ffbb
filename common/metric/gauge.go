// Copyright 2024 Gatefleet Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metric

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/metric"
)

type Gauge interface {
	Unregister()
}

type gauge struct {
	registration metric.Registration
}

func (g *gauge) Unregister() {
	if err := g.registration.Unregister(); err != nil {
		slog.Warn(
			"Failed to unregister gauge",
			slog.Any("error", err),
		)
	}
}

func NewGauge(name string, description string, unit string, labels map[string]any, callback func() int64) Gauge {
	og, err := meter.Int64ObservableGauge(name,
		metric.WithUnit(unit),
		metric.WithDescription(description),
	)
	fatalOnErr(err, name)

	attrs := metric.WithAttributes(getAttrs(labels)...)

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(og, callback(), attrs)
		return nil
	}, og)
	if err != nil {
		slog.Error(
			"Failed to register gauge",
			slog.String("metric-name", name),
			slog.Any("error", err),
		)
		os.Exit(1)
	}

	return &gauge{registration: registration}
}
