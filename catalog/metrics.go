package catalog

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Entity labels used in metrics and logs.
const (
	entityCity       = "city"
	entityAutoMarket = "automarket"
	entityAuto       = "auto"
)

// Outcome labels.
const (
	outcomeAdded   = "added"
	outcomeExists  = "exists"
	outcomeOK      = "ok"
	outcomeNoMatch = "not_found"
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
)

// Metrics holds the Prometheus collectors a Store reports to. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	queries   *prometheus.CounterVec
	entries   *prometheus.GaugeVec
}

// NewMetrics creates the catalog collectors and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autocatalog",
			Name:      "mutations_total",
			Help:      "Catalog insert attempts by entity and outcome.",
		}, []string{"entity", "outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autocatalog",
			Name:      "queries_total",
			Help:      "Catalog queries by name and outcome.",
		}, []string{"query", "outcome"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "autocatalog",
			Name:      "mirror_entries",
			Help:      "Entities held in the in-memory mirror.",
		}, []string{"entity"}),
	}

	var err error
	if m.mutations, err = register(reg, m.mutations); err != nil {
		return nil, err
	}
	if m.queries, err = register(reg, m.queries); err != nil {
		return nil, err
	}
	if m.entries, err = register(reg, m.entries); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register catalog metrics: %w", err)
	}
	return c, nil
}

func (m *Metrics) mutation(entity, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(entity, outcome).Inc()
}

func (m *Metrics) query(name string, err error) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(name, queryOutcome(err)).Inc()
}

func (m *Metrics) setEntries(entity string, n int) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(entity).Set(float64(n))
}

func queryOutcome(err error) string {
	switch KindOf(err) {
	case 0:
		if err != nil {
			return outcomeFailed
		}
		return outcomeOK
	case KindNotFound:
		return outcomeNoMatch
	case KindInvalidInput:
		return outcomeInvalid
	default:
		return outcomeFailed
	}
}
