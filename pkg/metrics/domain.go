package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts order and shipment activity.
type DomainMetrics struct {
	ordersCreated       prometheus.Counter
	shipmentTransitions *prometheus.CounterVec
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beer_orders_created_total",
		Help: "Beer orders committed.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipment_transitions_total",
		Help: "Shipment writes by resulting status.",
	}, []string{"status"})
	reg.MustRegister(ordersCreated, transitions)
	return &DomainMetrics{ordersCreated: ordersCreated, shipmentTransitions: transitions}
}

func (m *DomainMetrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncShipmentTransition counts a shipment persisted with status.
func (m *DomainMetrics) IncShipmentTransition(status string) {
	if m == nil || m.shipmentTransitions == nil {
		return
	}
	m.shipmentTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}
