package history

import (
	"context"
	"log"
	"sync"
	"time"
)

const janitorOpTimeout = 5 * time.Second

// Janitor periodically pings the message store and re-enforces the log
// cap. Append already trims after every push, so under normal operation
// the trim is a no-op; it matters when an external writer has grown the
// list or a trim was lost to a backend outage. Availability transitions
// are logged so a flapping store shows up once per flap, not per append.
type Janitor struct {
	store    Store
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup

	unavailable bool
}

func NewJanitor(store Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	j.wg.Add(1)
	go j.run()
	log.Printf("History janitor started (interval: %v)", j.interval)
}

func (j *Janitor) Stop() {
	close(j.stop)
	j.wg.Wait()
	log.Println("History janitor stopped")
}

func (j *Janitor) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stop:
			return
		}
	}
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), janitorOpTimeout)
	defer cancel()

	if err := j.store.Ping(ctx); err != nil {
		if !j.unavailable {
			log.Printf("Message store unavailable, chat continues without history: %v", err)
			j.unavailable = true
		}
		return
	}

	if j.unavailable {
		log.Println("Message store recovered")
		j.unavailable = false
	}

	if err := j.store.Trim(ctx); err != nil {
		log.Printf("History trim failed: %v", err)
	}
}
