package school

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// TestCounts holds the counts read from the store in a single query.
type TestCounts struct {
	Total     int `db:"total"`
	Passed    int `db:"passed"`
	Excellent int `db:"excellent"`
}

// Rate is a percentage of a total.
// It is encoded as a two-decimal string ("66.67"), or as the number 0 when the total is 0.
type Rate struct {
	percent float64
	defined bool
}

func NewRate(part, total int) Rate {
	if total == 0 {
		return Rate{}
	}
	return Rate{percent: float64(part) / float64(total) * 100, defined: true}
}

func (r Rate) Percent() float64 { return r.percent }

func (r Rate) String() string {
	if !r.defined {
		return "0"
	}
	return strconv.FormatFloat(r.percent, 'f', 2, 64)
}

func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("0"), nil
	}
	return json.Marshal(r.String())
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*r = Rate{percent: val, defined: val != 0}
	case string:
		pct, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return errors.Wrap(err, "parsing rate")
		}
		*r = Rate{percent: pct, defined: true}
	default:
		return errors.Errorf("invalid rate %s", b)
	}
	return nil
}

type Statistics struct {
	TotalTests     int  `json:"totalTests"`
	PassedCount    int  `json:"passedCount"`
	ExcellentCount int  `json:"excellentCount"`
	FailedCount    int  `json:"failedCount"`
	PassRate       Rate `json:"passRate"`
	ExcellentRate  Rate `json:"excellentRate"`
}

// ComputeStatistics derives the failed count and the rates from the counts.
func ComputeStatistics(c TestCounts) Statistics {
	return Statistics{
		TotalTests:     c.Total,
		PassedCount:    c.Passed,
		ExcellentCount: c.Excellent,
		FailedCount:    c.Total - c.Passed,
		PassRate:       NewRate(c.Passed, c.Total),
		ExcellentRate:  NewRate(c.Excellent, c.Total),
	}
}
