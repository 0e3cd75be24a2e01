package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"google.golang.org/grpc/codes"
)

// scenarioMethod копит статистику сценариев целиком, а не отдельных RPC.
const scenarioMethod = "scenario"

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Codes     map[string]int64 `json:"codes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	Mode              string                  `json:"mode"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	RecordsRead       int64                   `json:"records_read"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

// callLog хранит сырые наблюдения одного метода.
type callLog struct {
	byCode    map[codes.Code]int64
	latencies []time.Duration
}

func (l *callLog) total() int64 {
	var n int64
	for _, c := range l.byCode {
		n += c
	}
	return n
}

func (l *callLog) summary() methodReport {
	out := methodReport{
		Calls:     l.total(),
		Success:   l.byCode[codes.OK],
		Codes:     make(map[string]int64, len(l.byCode)),
		LatencyMs: buildLatencySummary(toMillis(l.latencies)),
	}
	out.Failed = out.Calls - out.Success
	out.ErrorRate = ratio(out.Failed, out.Calls)
	for code, n := range l.byCode {
		out.Codes[code.String()] = n
	}
	return out
}

// collector собирает вызовы из всех воркеров.
type collector struct {
	mu      sync.Mutex
	calls   map[string]*callLog
	records int64
}

func newCollector() *collector {
	return &collector{calls: make(map[string]*callLog)}
}

func (c *collector) record(method string, latency time.Duration, code codes.Code) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.calls[method]
	if entry == nil {
		entry = &callLog{byCode: make(map[codes.Code]int64)}
		c.calls[method] = entry
	}
	entry.byCode[code]++
	entry.latencies = append(entry.latencies, latency)
}

func (c *collector) addRecords(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records += int64(n)
}

func (c *collector) snapshot(method string) (methodReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.calls[method]
	if entry == nil {
		return methodReport{}, false
	}
	return entry.summary(), true
}

func (c *collector) buildReport(mode loadMode, startedAt time.Time, elapsed time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	methods := make(map[string]methodReport, len(c.calls))
	for name, entry := range c.calls {
		methods[name] = entry.summary()
	}

	scenarios := methods[scenarioMethod]
	out := report{
		StartedAt:         startedAt.UTC(),
		Mode:              string(mode),
		DurationSeconds:   elapsed.Seconds(),
		TotalScenarios:    scenarios.Calls,
		SuccessScenarios:  scenarios.Success,
		FailedScenarios:   scenarios.Failed,
		ErrorRate:         scenarios.ErrorRate,
		RecordsRead:       c.records,
		ScenarioLatencyMs: scenarios.LatencyMs,
		Methods:           methods,
	}
	if elapsed > 0 {
		out.RPS = float64(out.TotalScenarios) / elapsed.Seconds()
	}
	return out
}

// writeJSONReport пишет отчёт в файл внутри текущего каталога.
func writeJSONReport(fsys afero.Fs, path string, result report) error {
	target := filepath.Clean(path)
	switch {
	case target == "." || target == string(filepath.Separator):
		return errors.New("output path must point to a file")
	case target == ".." || strings.HasPrefix(target, ".."+string(filepath.Separator)):
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return afero.WriteFile(fsys, target, append(payload, '\n'), 0o644)
}

func printReport(w io.Writer, result report, cfg config) {
	lat := result.ScenarioLatencyMs
	_, _ = fmt.Fprintf(w, "Catalog read load: mode=%s run=%s\n", cfg.mode, runTarget(cfg))
	_, _ = fmt.Fprintf(w, "scenarios total=%d ok=%d failed=%d error_rate=%.4f records=%d rps=%.2f in %.2fs\n",
		result.TotalScenarios, result.SuccessScenarios, result.FailedScenarios,
		result.ErrorRate, result.RecordsRead, result.RPS, result.DurationSeconds)
	_, _ = fmt.Fprintf(w, "latency ms min/avg/p50/p95/p99/max = %.2f/%.2f/%.2f/%.2f/%.2f/%.2f\n",
		lat.Min, lat.Avg, lat.P50, lat.P95, lat.P99, lat.Max)

	names := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name != scenarioMethod {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	slices.Sort(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "METHOD\tCALLS\tFAILED\tERROR_RATE\tP95_MS")
	for _, name := range names {
		m := result.Methods[name]
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%.2f\n", name, m.Calls, m.Failed, m.ErrorRate, m.LatencyMs.P95)
	}
	_ = tw.Flush()
}

func runTarget(cfg config) string {
	switch {
	case cfg.duration <= 0:
		return fmt.Sprintf("count:%d", cfg.total)
	case cfg.totalSet:
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	default:
		return fmt.Sprintf("duration:%s", cfg.duration)
	}
}

func toMillis(values []time.Duration) []float64 {
	out := make([]float64, len(values))
	for i, d := range values {
		out[i] = float64(d.Microseconds()) / 1000
	}
	return out
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

// percentile интерполирует между соседними рангами отсортированной выборки.
func percentile(sorted []float64, p float64) float64 {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	i := int(pos)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (sorted[i+1]-sorted[i])*(pos-float64(i))
}

func ratio(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}
