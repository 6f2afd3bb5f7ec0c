// Copyright 2025 walteh LLC
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

package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"gitlab.com/tozd/go/errors"
)

const namespace = "pagemigrate"

// 📈 PrometheusRecorder implements Recorder on its own registry
type PrometheusRecorder struct {
	registry       *prom.Registry
	fileResults    *prom.CounterVec
	importDuration *prom.HistogramVec
	runDuration    prom.Gauge
	dirsCached     prom.Gauge
}

// 🏭 NewPrometheusRecorder registers the run metrics on reg, or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		fileResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "file_results_total",
			Help:      "Files processed by strategy and outcome",
		}, []string{"strategy", "result"}),
		importDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent importing a single file",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"strategy"}),
		runDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last migration run",
		}),
		dirsCached: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "parent_dirs_cached",
			Help:      "Directories whose parent page chain was confirmed during the run",
		}),
	}
	reg.MustRegister(pr.fileResults, pr.importDuration, pr.runDuration, pr.dirsCached)
	return pr
}

func (p *PrometheusRecorder) IncFileResult(strategy string, result Result) {
	if p == nil {
		return
	}
	p.fileResults.WithLabelValues(strategy, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveImportDuration(strategy string, d time.Duration) {
	if p == nil {
		return
	}
	p.importDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Set(d.Seconds())
}

func (p *PrometheusRecorder) SetParentDirsCached(n int) {
	if p == nil {
		return
	}
	p.dirsCached.Set(float64(n))
}

// 💾 WriteTextfile writes the metrics in the node exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return errors.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
