package metrics

import (
	"fmt"

	dto "github.com/prometheus/client_model/go"
)

// series returns the sample of family name whose labels include every pair in
// want.
func series(mfs []*dto.MetricFamily, name string, want map[string]string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabels(m, want) {
				return m, nil
			}
		}
		return nil, fmt.Errorf("%s has no series %v", name, want)
	}
	return nil, fmt.Errorf("%s not gathered", name)
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, pair := range m.GetLabel() {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	m, err := series(mfs, name, map[string]string{label: value})
	if err != nil {
		return 0, err
	}
	return m.GetCounter().GetValue(), nil
}
