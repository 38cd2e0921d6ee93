package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
)

func encodeResult(result *core.ClassificationResult) (string, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode cached result: %w", err)
	}
	return string(b), nil
}

func decodeResult(data string) (*core.ClassificationResult, error) {
	var result core.ClassificationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// runCleanup calls cleanup every freq until stopCh is closed
func runCleanup(freq time.Duration, stopCh <-chan struct{}, logger *zap.Logger, cleanup func(context.Context) error) {
	if freq <= 0 {
		return
	}
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}
