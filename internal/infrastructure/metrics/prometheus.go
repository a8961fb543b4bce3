package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	appwarehouse "github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

var _ appwarehouse.Metrics = (*Warehouse)(nil)

// Warehouse contadores Prometheus del flujo de bodega.
type Warehouse struct {
	scans        *prometheus.CounterVec
	promotions   *prometheus.CounterVec
	codeFailures prometheus.Counter
	batches      prometheus.Counter
	boxes        prometheus.Counter
}

// NewWarehouse registra los contadores en reg. Usar prometheus.NewRegistry() en tests.
func NewWarehouse(reg prometheus.Registerer) *Warehouse {
	m := &Warehouse{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "citrusstock",
			Name:      "scans_total",
			Help:      "Escaneos de cajas confirmados, por modo.",
		}, []string{"mode"}),
		promotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "citrusstock",
			Name:      "batch_promotions_total",
			Help:      "Cambios de estado de partidas derivados de sus cajas.",
		}, []string{"status"}),
		codeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citrusstock",
			Name:      "code_generation_failures_total",
			Help:      "Fallos al generar el código de una caja durante el escaneo.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citrusstock",
			Name:      "batches_created_total",
			Help:      "Partidas registradas.",
		}),
		boxes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citrusstock",
			Name:      "boxes_created_total",
			Help:      "Cajas creadas junto con su partida.",
		}),
	}
	reg.MustRegister(m.scans, m.promotions, m.codeFailures, m.batches, m.boxes)
	return m
}

func (m *Warehouse) ScanRecorded(mode entity.ScanMode) {
	m.scans.WithLabelValues(string(mode)).Inc()
}

func (m *Warehouse) BatchPromoted(status entity.GoodsStatus) {
	m.promotions.WithLabelValues(string(status)).Inc()
}

func (m *Warehouse) CodeGenerationFailed() {
	m.codeFailures.Inc()
}

func (m *Warehouse) BatchCreated(boxes int) {
	m.batches.Inc()
	m.boxes.Add(float64(boxes))
}

// Scans valor actual del contador de escaneos para un modo.
func (m *Warehouse) Scans(mode entity.ScanMode) prometheus.Counter {
	return m.scans.WithLabelValues(string(mode))
}

// Promotions contador de promociones para un estado.
func (m *Warehouse) Promotions(status entity.GoodsStatus) prometheus.Counter {
	return m.promotions.WithLabelValues(string(status))
}

// CodeFailures contador de fallos de generación de código.
func (m *Warehouse) CodeFailures() prometheus.Counter {
	return m.codeFailures
}
