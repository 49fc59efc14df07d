package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики долгов
	TotalDebts        int64
	PaidOffDebts      int64
	PaymentsProcessed int64
	FailedPayments    int64
	LastPaymentTime   time.Time

	// Метрики симуляций
	SimulationsRun       int64
	SimulationLatency    time.Duration
	AvgSimulationLatency time.Duration

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if err != nil {
		m.FailedRequests++
		m.recordErrorLocked(err)
	}
}

// RecordDebtOperation записывает метрики операции с долгом
func (m *Metrics) RecordDebtOperation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "create":
		m.TotalDebts++
	case "delete":
		m.TotalDebts--
	case "paid_off":
		m.PaidOffDebts++
	}

	if err != nil {
		m.recordErrorLocked(err)
	}
}

// RecordPayment записывает метрики обработки платежа
func (m *Metrics) RecordPayment(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastPaymentTime = time.Now()
	if err != nil {
		m.FailedPayments++
		m.recordErrorLocked(err)
		return
	}
	m.PaymentsProcessed++
}

// RecordSimulation записывает метрики прогона симуляции стратегий
func (m *Metrics) RecordSimulation(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SimulationsRun++
	m.SimulationLatency += duration
	m.AvgSimulationLatency = m.SimulationLatency / time.Duration(m.SimulationsRun)

	if err != nil {
		m.recordErrorLocked(err)
	}
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_requests":         m.TotalRequests,
		"failed_requests":        m.FailedRequests,
		"average_latency":        m.AverageLatency.String(),
		"total_debts":            m.TotalDebts,
		"paid_off_debts":         m.PaidOffDebts,
		"payments_processed":     m.PaymentsProcessed,
		"failed_payments":        m.FailedPayments,
		"simulations_run":        m.SimulationsRun,
		"avg_simulation_latency": m.AvgSimulationLatency.String(),
		"error_count":            m.ErrorCount,
		"last_error_time":        m.LastErrorTime,
		"error_types":            m.ErrorTypes,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TotalDebts = 0
	m.PaidOffDebts = 0
	m.PaymentsProcessed = 0
	m.FailedPayments = 0
	m.SimulationsRun = 0
	m.SimulationLatency = 0
	m.AvgSimulationLatency = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
