package worker

import (
	"math"
	"strings"
	"time"
)

// shouldRetry returns (retry?, delay)
func (w *Worker) shouldRetry(cfg *Retry, attempts int) (bool, time.Duration) {
	if cfg == nil {
		if attempts >= w.maxRetries {
			return false, 0
		}
		return true, w.retryDelay
	}
	if strings.ToLower(cfg.Type) == RetryNone {
		return false, 0
	}
	max := cfg.MaxRetries
	if max == 0 {
		max = w.maxRetries
	}
	if attempts >= max {
		return false, 0
	}
	baseDelay := w.retryDelay
	if cfg.Delay > 0 {
		baseDelay = cfg.Delay
	}
	switch strings.ToLower(cfg.Type) {
	case RetryExponential:
		mult := cfg.Multiplier
		if mult <= 1 {
			mult = 2
		}
		delay := time.Duration(float64(baseDelay) * math.Pow(mult, float64(attempts)))
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		return true, delay
	default:
		return true, baseDelay
	}
}
