// Package bulk drives the orchestrator over long url lists. Urls are processed in sequential
// chunks, each chunk in sub-groups of parallel parses, with pauses in between. Statistics are
// folded after every chunk and pushed to progress subscribers.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/venuescope/pkg/domain"
)

//go:generate moq -out mocks/parser.go -pkg mocks -skip-ensure -fmt goimports . Parser

// Parser parses a single venue url
type Parser interface {
	ParseVenue(ctx context.Context, url string) (domain.Outcome, error)
}

// Options control chunking and pacing of a run. Delay separates chunks,
// GroupPause separates sub-groups of MaxConcurrent urls inside a chunk.
type Options struct {
	BatchSize     int           `json:"batch_size"`
	Delay         time.Duration `json:"delay"`
	MaxConcurrent int           `json:"max_concurrent"`
	GroupPause    time.Duration `json:"group_pause"`
}

// DefaultOptions are used when Run gets zero options
var DefaultOptions = Options{BatchSize: 20, Delay: 2 * time.Second, MaxConcurrent: 5, GroupPause: 500 * time.Millisecond}

// ErrRunInProgress is returned by Run when another run is active
var ErrRunInProgress = errors.New("batch run already in progress")

// Status describes the current or last run
type Status struct {
	RunID        string            `json:"run_id"`
	Processing   bool              `json:"is_processing"`
	Total        int               `json:"total"`
	ResultsCount int               `json:"results_count"`
	Statistics   domain.Statistics `json:"statistics"`
}

// Processor runs batches, one at a time
type Processor struct {
	parser   Parser
	defaults Options
	now      func() time.Time

	running atomic.Bool
	stopped atomic.Bool

	mu      sync.Mutex
	status  Status
	subs    map[int]func(domain.Progress)
	nextSub int
}

// NewProcessor makes a processor, zero defaults are replaced by DefaultOptions
func NewProcessor(parser Parser, defaults Options) *Processor {
	if defaults == (Options{}) {
		defaults = DefaultOptions
	}
	return &Processor{parser: parser, defaults: defaults, now: time.Now, subs: map[int]func(domain.Progress){}}
}

// Run processes urls and returns the final report. A stopped or canceled run still returns
// the report of what was processed. Errors only on invalid options or a concurrent run.
func (p *Processor) Run(ctx context.Context, urls []string, opts Options) (*domain.Report, error) {
	if opts == (Options{}) {
		opts = p.defaults
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)
	p.stopped.Store(false)

	runID := uuid.NewString()
	stats := domain.NewStatistics()
	stats.StartTime = p.now()
	results := make([]domain.URLResult, 0, len(urls))
	p.setStatus(Status{RunID: runID, Processing: true, Total: len(urls), Statistics: stats})
	lgr.Printf("[INFO] batch run %s started, %d urls, batch %d, concurrency %d", runID, len(urls), opts.BatchSize, opts.MaxConcurrent)

	stopped := false
	totalChunks := (len(urls) + opts.BatchSize - 1) / opts.BatchSize
	for start := 0; start < len(urls); start += opts.BatchSize {
		if p.stopped.Load() || ctx.Err() != nil {
			lgr.Printf("[INFO] batch run %s stopped after %d urls", runID, len(results))
			stopped = true
			break
		}
		end := min(start+opts.BatchSize, len(urls))
		lgr.Printf("[DEBUG] batch %d/%d (%d urls)", start/opts.BatchSize+1, totalChunks, end-start)

		chunk := p.processChunk(ctx, urls[start:end], opts)
		results = append(results, chunk...)
		foldStatistics(&stats, chunk)
		p.setStatus(Status{RunID: runID, Processing: true, Total: len(urls), ResultsCount: len(results), Statistics: stats})
		p.notify(domain.Progress{
			RunID:        runID,
			Processed:    end,
			Total:        len(urls),
			Percentage:   percent(end, len(urls)),
			Successful:   stats.Successful,
			Failed:       stats.Failed,
			TotalEvents:  stats.TotalEvents,
			CurrentBatch: chunk,
		})

		if end < len(urls) {
			sleep(ctx, opts.Delay)
		}
	}

	stats.EndTime = p.now()
	stats.ProcessingTime = stats.EndTime.Sub(stats.StartTime)
	if stats.TotalProcessed > 0 {
		stats.AverageConfidence = stats.ConfidenceSum / float64(stats.TotalProcessed)
	}
	p.setStatus(Status{RunID: runID, Processing: false, Total: len(urls), ResultsCount: len(results), Statistics: stats})
	lgr.Printf("[INFO] batch run %s complete, %d/%d successful", runID, stats.Successful, stats.TotalProcessed)

	report := buildReport(runID, stats, results)
	report.Summary.Stopped = stopped
	return report, nil
}

// processChunk parses urls in sub-groups of MaxConcurrent, joining each sub-group before the next one
func (p *Processor) processChunk(ctx context.Context, urls []string, opts Options) []domain.URLResult {
	res := make([]domain.URLResult, len(urls))
	for start := 0; start < len(urls); start += opts.MaxConcurrent {
		end := min(start+opts.MaxConcurrent, len(urls))
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				res[i] = p.parseOne(ctx, urls[i])
				return nil
			})
		}
		_ = g.Wait()
		if end < len(urls) {
			sleep(ctx, opts.GroupPause)
		}
	}
	return res
}

// parseOne never fails, errors and panics become failed results
func (p *Processor) parseOne(ctx context.Context, pageURL string) (res domain.URLResult) {
	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[ERROR] panic while parsing %s: %v", pageURL, r)
			res = failedResult(pageURL, fmt.Errorf("panic: %v", r))
			res.Outcome.ErrorKind = domain.ErrorKindPanic
		}
	}()

	out, err := p.parser.ParseVenue(ctx, pageURL)
	if err != nil {
		lgr.Printf("[WARN] failed to process %s: %v", pageURL, err)
		return failedResult(pageURL, err)
	}
	out.Settle()
	return domain.URLResult{URL: pageURL, Success: out.Success(), Outcome: out}
}

func failedResult(pageURL string, err error) domain.URLResult {
	out := domain.Failed("", pageURL, err)
	out.Settle()
	return domain.URLResult{URL: pageURL, Outcome: out}
}

// Stop asks the active run to finish after the chunk in flight
func (p *Processor) Stop() {
	p.stopped.Store(true)
	lgr.Printf("[INFO] batch stop requested")
}

// OnProgress subscribes fn to progress snapshots. The returned func unsubscribes.
func (p *Processor) OnProgress(fn func(domain.Progress)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Status returns the state of the active or last run
func (p *Processor) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := p.status
	res.Statistics = copyStatistics(p.status.Statistics)
	return res
}

func (p *Processor) setStatus(st Status) {
	st.Statistics = copyStatistics(st.Statistics)
	p.mu.Lock()
	p.status = st
	p.mu.Unlock()
}

// notify calls subscribers outside of the lock, a panicking subscriber doesn't affect others
func (p *Processor) notify(pr domain.Progress) {
	p.mu.Lock()
	subs := make([]func(domain.Progress), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					lgr.Printf("[WARN] progress callback error: %v", r)
				}
			}()
			fn(pr)
		}()
	}
}

func (o Options) validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent must be positive, got %d", o.MaxConcurrent)
	}
	if o.Delay < 0 || o.GroupPause < 0 {
		return errors.New("delays must be non-negative")
	}
	return nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
