// Package retry 指数退避重试
package retry

import (
	"context"
	"math"
	"time"
)

// Config 重试配置
type Config struct {
	// Attempts 总尝试次数（含首次），小于 1 时按 1 处理
	Attempts int
	Delay    time.Duration
	Factor   float64
	MaxDelay time.Duration

	// Retryable 为 nil 时所有错误都重试
	Retryable func(error) bool
}

// DefaultConfig 3 次尝试，10ms 起步，每次翻倍，最长 500ms
func DefaultConfig() Config {
	return Config{
		Attempts: 3,
		Delay:    10 * time.Millisecond,
		Factor:   2,
		MaxDelay: 500 * time.Millisecond,
	}
}

// Once 只尝试一次
func Once() Config {
	return Config{Attempts: 1}
}

// Backoff 第 attempt 次失败后的等待时间（attempt 从 1 开始）
func (c Config) Backoff(attempt int) time.Duration {
	factor := c.Factor
	if factor < 1 {
		factor = 1
	}
	d := time.Duration(float64(c.Delay) * math.Pow(factor, float64(attempt-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// Do 执行 op 直到成功、错误不可重试、次数耗尽或 ctx 结束，返回最后一次错误
func Do(ctx context.Context, cfg Config, op func(ctx context.Context, attempt int) error) error {
	attempts := max(cfg.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = op(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(cfg.Backoff(attempt))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		}
	}
	return lastErr
}
