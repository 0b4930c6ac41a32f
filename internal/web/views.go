package web

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Zachkp/zach-dev-chunker/internal/chunker"
	"github.com/Zachkp/zach-dev-chunker/internal/connectivity"
	"github.com/Zachkp/zach-dev-chunker/internal/logger"
	"github.com/Zachkp/zach-dev-chunker/internal/metrics"
)

// View is one visitor's chunker page: its own connectivity monitor and
// orchestrator, alive until it expires from the registry.
type View struct {
	ID      string
	Monitor *connectivity.Monitor
	Chunker *chunker.Orchestrator

	ctx    context.Context
	cancel context.CancelFunc
}

// Activate fires the initial health probe.
func (v *View) Activate() {
	v.Monitor.Refresh(v.ctx)
}

// Refresh re-probes the service and waits for that probe to resolve.
func (v *View) Refresh() connectivity.Status {
	return <-v.Monitor.Refresh(v.ctx)
}

func (v *View) Close() {
	v.cancel()
	v.Chunker.Close()
}

type viewRegistry struct {
	views   *expirable.LRU[string, *View]
	service Service
	opts    Options
	metrics *metrics.Metrics
}

func newViewRegistry(service Service, m *metrics.Metrics, opts Options) *viewRegistry {
	r := &viewRegistry{service: service, opts: opts, metrics: m}
	r.views = expirable.NewLRU[string, *View](opts.MaxViews, func(_ string, v *View) {
		v.Close()
		// a closed chunker never settles, so its request is counted out here
		if v.Chunker.State().Phase == chunker.PhaseSubmitting {
			m.RequestFinished()
		}
		m.ViewClosed()
	}, opts.ViewTTL)
	return r
}

// get returns the view and pushes its expiry out by another TTL.
func (r *viewRegistry) get(id string) (*View, bool) {
	v, ok := r.views.Get(id)
	if ok {
		r.views.Add(id, v)
	}
	return v, ok
}

func (r *viewRegistry) create() *View {
	id := uuid.NewString()
	log := logger.GetDefault().With("view", id)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = logger.ContextWithLogger(ctx, log)

	monitor := connectivity.NewMonitor(r.service, r.opts.HealthTimeout)
	monitor.OnStatus(func(s connectivity.Status) {
		r.metrics.ProbeFinished(string(s))
		log.Debug("health probe resolved", "status", s)
	})

	orch := chunker.New(r.service, monitor, chunker.Options{
		Timeout:  r.opts.ChunkTimeout,
		Recorder: r.metrics,
	})
	phase := orch.State().Phase
	orch.OnChange(func(st chunker.State) {
		if st.Phase == phase {
			return
		}
		switch {
		case st.Phase == chunker.PhaseSubmitting:
			r.metrics.RequestStarted()
		case phase == chunker.PhaseSubmitting:
			r.metrics.RequestFinished()
		}
		log.Debug("chunker phase changed", "from", phase, "to", st.Phase)
		phase = st.Phase
	})

	v := &View{
		ID:      id,
		Monitor: monitor,
		Chunker: orch,
		ctx:     ctx,
		cancel:  cancel,
	}
	r.views.Add(id, v)
	r.metrics.ViewOpened()
	return v
}

func (r *viewRegistry) purge() {
	r.views.Purge()
}

func (o Options) cookieMaxAge() int {
	return int(o.ViewTTL / time.Second)
}
