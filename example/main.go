package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mklatt/redo"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	r, err := redo.New(
		redo.WithAttempts(4),
		redo.WithSleeptime(time.Second),
		redo.WithMaxSleeptime(time.Second*10),
		redo.WithJitter(time.Millisecond*500),
		redo.WithLogger(logger),
		redo.WithName("fetch"),
	)
	if err != nil {
		log.Fatal(err)
	}

	status, err := redo.DoWithResult(context.Background(), r, func(ctx context.Context) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.google.com", nil)
		if err != nil {
			return 0, redo.NonRetryable(err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return 0, errors.New(resp.Status)
		}

		return resp.StatusCode, nil
	})
	if err != nil {
		log.Fatalf("request has failed: %v", err)
	}

	log.Printf("request is successful: %d", status)
}
