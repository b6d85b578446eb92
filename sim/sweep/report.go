package sweep

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Analysis summarizes how throughput responds to increasing WIP.
type Analysis struct {
	Threshold        float64   `json:"threshold" yaml:"threshold"`
	Improvements     []float64 `json:"improvements" yaml:"improvements"` // gain from level i to level i+1
	TotalImprovement float64   `json:"total_improvement" yaml:"total_improvement"`
	DiminishingWIP   int       `json:"diminishing_wip,omitempty" yaml:"diminishing_wip,omitempty"`
}

// Found reports whether a diminishing-returns level was identified.
// DiminishingWIP is the first level whose gain over the previous level fell
// below Threshold.
func (a Analysis) Found() bool {
	return a.DiminishingWIP > 0
}

// Analyze computes step-wise throughput improvements across levels (ordered
// by increasing WIP) and locates the onset of diminishing returns.
func Analyze(levels []LevelResult, threshold float64) Analysis {
	a := Analysis{Threshold: threshold}
	if len(levels) == 0 {
		return a
	}
	for i := 1; i < len(levels); i++ {
		a.Improvements = append(a.Improvements,
			relativeGain(levels[i-1].Throughput.Mean, levels[i].Throughput.Mean))
	}
	a.TotalImprovement = relativeGain(levels[0].Throughput.Mean, levels[len(levels)-1].Throughput.Mean)
	for i, imp := range a.Improvements {
		if imp < threshold {
			a.DiminishingWIP = levels[i+1].WIP
			break
		}
	}
	return a
}

// relativeGain treats a step up from zero throughput as a 100% gain.
func relativeGain(prev, cur float64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 1
		}
		return 0
	}
	return (cur - prev) / prev
}

// Report is the outcome of a sweep.
type Report struct {
	Levels   []LevelResult `json:"levels" yaml:"levels"`
	Analysis Analysis      `json:"analysis" yaml:"analysis"`
}

// Level returns the aggregate for the given WIP, if it was swept.
func (r *Report) Level(wip int) (LevelResult, bool) {
	for _, l := range r.Levels {
		if l.WIP == wip {
			return l, true
		}
	}
	return LevelResult{}, false
}

// Print writes the sweep as a table followed by the analysis.
func (r *Report) Print(w io.Writer) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "WIP IMPACT ANALYSIS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-6s %-20s %-12s %-12s %-10s %s\n", "WIP", "Throughput", "Cycle Time", "Bottleneck", "Queue Len", "Station")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, l := range r.Levels {
		fmt.Fprintf(w, "%-6d %-20s %-12.2f %-12s %-10.2f %s\n",
			l.WIP,
			fmt.Sprintf("%.4f ± %.4f", l.Throughput.Mean, l.Throughput.HalfWidth),
			l.CycleTime.Mean,
			fmt.Sprintf("%.2f%%", l.BottleneckUtilization.Mean*100),
			l.BottleneckQueue.Mean,
			l.Bottleneck)
	}
	fmt.Fprintln(w, strings.Repeat("-", 70))

	if len(r.Levels) == 0 {
		return
	}
	first, last := r.Levels[0], r.Levels[len(r.Levels)-1]
	fmt.Fprintf(w, "\nThroughput: %.4f at WIP=%d, %.4f at WIP=%d (%+.1f%%)\n",
		first.Throughput.Mean, first.WIP, last.Throughput.Mean, last.WIP, r.Analysis.TotalImprovement*100)
	fmt.Fprintf(w, "Cycle time: %.2f at WIP=%d, %.2f at WIP=%d\n",
		first.CycleTime.Mean, first.WIP, last.CycleTime.Mean, last.WIP)
	if l, ok := r.Level(r.Analysis.DiminishingWIP); ok && r.Analysis.Found() {
		fmt.Fprintf(w, "Diminishing returns start at WIP ≈ %d (gain below %.0f%%)\n",
			l.WIP, r.Analysis.Threshold*100)
		fmt.Fprintf(w, "  Expected throughput: %.4f jobs/time, cycle time: %.2f\n",
			l.Throughput.Mean, l.CycleTime.Mean)
	} else {
		fmt.Fprintln(w, "No diminishing returns observed; consider testing higher WIP levels")
	}
	fmt.Fprintln(w, rule)
}

// Write renders the report in the given format: "text", "json" or "yaml".
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		r.Print(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q; valid: text, json, yaml", format)
	}
}
