package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// BasketCalcTotal counts basket pricing evaluations by outcome.
	BasketCalcTotal *prometheus.CounterVec
	// BasketLineTotal counts priced basket lines, split by whether a discount applied.
	BasketLineTotal *prometheus.CounterVec
	// StockImportRecordsTotal counts processed import records by outcome.
	StockImportRecordsTotal *prometheus.CounterVec
	// StockImportBatchTotal counts import batches.
	StockImportBatchTotal prometheus.Counter
	// CatalogCacheTotal counts catalog cache lookups by result.
	CatalogCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		BasketCalcTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "basket_calculations_total",
			Help:      "Count of basket pricing evaluations by outcome.",
		}, []string{"result"})
		BasketLineTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "basket_lines_total",
			Help:      "Count of priced basket lines by discount applicability.",
		}, []string{"discounted"})
		StockImportRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_import_records_total",
			Help:      "Count of processed stock import records by outcome.",
		}, []string{"result"})
		StockImportBatchTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_import_batches_total",
			Help:      "Total number of stock import batches processed.",
		})
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Count of catalog cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, BasketCalcTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BasketCalcTotal = v
			}
		})
		mustRegisterCollector(reg, BasketLineTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BasketLineTotal = v
			}
		})
		mustRegisterCollector(reg, StockImportRecordsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				StockImportRecordsTotal = v
			}
		})
		mustRegisterCollector(reg, StockImportBatchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				StockImportBatchTotal = v
			}
		})
		mustRegisterCollector(reg, CatalogCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogCacheTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
