package prometheus

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/unsaferow/conf"
	"github.com/squareup/unsaferow/errors"
	"github.com/squareup/unsaferow/metrics"
)

// Factory creates counters in its own registry, and serves them over http when the
// configuration enables metrics.
type Factory struct {
	config     conf.Config
	registry   *prometheus.Registry
	lock       sync.Mutex
	httpServer *http.Server
	started    bool
}

func NewFactory(config conf.Config) *Factory {
	return &Factory{config: config, registry: prometheus.NewRegistry()}
}

func (f *Factory) CreateCounter(name string, description string) (metrics.Counter, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.started {
		return nil, errors.New("not started")
	}
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: description,
	})
	if err := f.registry.Register(counter); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, errors.WithStack(err)
		}
		existing, ok := are.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, errors.WithStack(err)
		}
		counter = existing
	}
	return &Counter{pCounter: counter}, nil
}

// Gatherer exposes the registry, e.g. for tests.
func (f *Factory) Gatherer() prometheus.Gatherer {
	return f.registry
}

func (f *Factory) Start() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.started {
		return errors.New("already started")
	}
	f.started = true
	if !f.config.MetricsEnabled {
		return nil
	}
	addr := f.config.MetricsHTTPListenAddr
	if addr == "" {
		addr = conf.DefaultMetricsHTTPListenAddr
	}
	handler := promhttp.InstrumentMetricHandler(f.registry, promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{}))
	f.httpServer = &http.Server{Addr: addr, Handler: handler}
	go func(srv *http.Server) {
		log.Debugf("starting prometheus http server on address %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("prometheus http export server failed to listen %v", err)
		}
	}(f.httpServer)
	return nil
}

func (f *Factory) Stop() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.started {
		return errors.New("not started")
	}
	f.started = false
	if f.httpServer != nil {
		srv := f.httpServer
		f.httpServer = nil
		return srv.Close()
	}
	return nil
}

type Counter struct {
	pCounter prometheus.Counter
}

func (c *Counter) Inc() {
	c.pCounter.Inc()
}

func (c *Counter) Add(v float64) {
	c.pCounter.Add(v)
}

var _ metrics.Factory = (*Factory)(nil)

