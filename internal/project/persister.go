package project

import (
	"log"
	"sync"
	"time"

	"github.com/ivlev/screencut/internal/schedule"
)

// SaveDelay is how long state must stay unchanged before it is written.
const SaveDelay = 300 * time.Millisecond

// Persister writes a project document once edits have settled.
//
// Schedule, Flush and Cancel follow the Debouncer rules and must be called
// from the owner's serialized context. The snapshot is taken there; the disk
// write happens on a separate goroutine. Writes are numbered so that a slow
// older write never lands after a newer one.
type Persister struct {
	path     string
	snapshot func() Document
	debounce *schedule.Debouncer

	seq int64

	writeMu sync.Mutex
	written int64
	lastErr error
	wg      sync.WaitGroup
}

// NewPersister returns a persister for path. snapshot is called when the
// quiet period expires and must describe the current state.
func NewPersister(sched schedule.Scheduler, path string, delay time.Duration, snapshot func() Document) *Persister {
	p := &Persister{path: path, snapshot: snapshot}
	p.debounce = schedule.NewDebouncer(sched, delay, p.save)
	return p
}

func (p *Persister) Path() string { return p.path }

// Schedule marks the state dirty and restarts the quiet period.
func (p *Persister) Schedule() {
	p.debounce.Trigger()
}

// Pending reports whether a save is waiting for its quiet period.
func (p *Persister) Pending() bool {
	return p.debounce.Pending()
}

// Cancel drops a pending save without writing.
func (p *Persister) Cancel() {
	p.debounce.Cancel()
}

// Flush writes the current state immediately if a save was pending, then
// waits for every outstanding write.
func (p *Persister) Flush() error {
	if p.debounce.Pending() {
		p.debounce.Cancel()
		p.seq++
		p.write(p.seq, p.snapshot())
	}
	p.wg.Wait()

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.lastErr
}

// Wait blocks until background writes have finished.
func (p *Persister) Wait() {
	p.wg.Wait()
}

func (p *Persister) save() {
	p.seq++
	seq, doc := p.seq, p.snapshot()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.write(seq, doc)
	}()
}

func (p *Persister) write(seq int64, doc Document) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if seq <= p.written {
		return
	}
	if err := Save(p.path, doc); err != nil {
		log.Printf("[!] Failed to save project state: %v", err)
		p.lastErr = err
		return
	}
	p.written = seq
	p.lastErr = nil
}
