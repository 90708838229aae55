package llm

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// completer is what the retry loops need from the client; tests swap in
// a scripted stub.
type completer interface {
	RandomizedModels() (string, []string)
	Complete(ctx context.Context, primary string, backups []string, p Params) (string, error)
	CompleteStream(ctx context.Context, primary string, backups []string, p Params, onChunk func(string) error) error
}

// Retrier wraps the failover client with bounded retry and exponential
// backoff. The non-streaming and streaming paths share the same attempt
// loop but surface failures differently: CallWithRetry stays silent until
// it throws, StreamWithRetry writes retry notices and the final error into
// the response stream because the HTTP status is already on the wire.
type Retrier struct {
	client     completer
	maxRetries int
	sleep      func(time.Duration)
}

func NewRetrier(client *Client) *Retrier {
	return &Retrier{
		client:     client,
		maxRetries: len(client.Pool()),
		sleep:      time.Sleep,
	}
}

// 1s, 2s, 4s, capped at 5s.
func backoffDelay(attempt int) time.Duration {
	delay := time.Second << (attempt - 1)
	if delay > 5*time.Second {
		delay = 5 * time.Second
	}
	return delay
}

// CallWithRetry returns the first non-empty completion, retrying with a
// freshly randomized primary/backup set per attempt. A whitespace-only
// response counts as a failure: the upstream "succeeded" but returned
// nothing usable.
func (r *Retrier) CallWithRetry(ctx context.Context, p Params) (string, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			r.sleep(backoffDelay(attempt))
		}

		primary, backups := r.client.RandomizedModels()

		content, err := r.client.Complete(ctx, primary, backups, p)
		if err == nil && strings.TrimSpace(content) == "" {
			err = fmt.Errorf("empty response from model: %s", primary)
		}
		if err != nil {
			lastErr = err
			log.Printf("LLM call attempt %d/%d failed: %v", attempt+1, r.maxRetries, err)
			continue
		}

		return content, nil
	}

	return "", fmt.Errorf("failed to get LLM response after %d attempts, last error: %v", r.maxRetries, lastErr)
}

// StreamWithRetry forwards completion chunks to w as they arrive. Before
// each retry it writes a human-readable notice into the stream so the
// client sees progress rather than silence; when every attempt fails it
// writes a final in-band error line, since headers were sent before the
// first byte and the status can no longer change.
func (r *Retrier) StreamWithRetry(ctx context.Context, w io.Writer, p Params) error {
	flusher, _ := w.(http.Flusher)
	write := func(s string) {
		io.WriteString(w, s)
		if flusher != nil {
			flusher.Flush()
		}
	}

	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			r.sleep(backoffDelay(attempt))
			write(fmt.Sprintf("\n\nRetrying with a different model (attempt %d/%d)...\n\n", attempt+1, r.maxRetries))
		}

		primary, backups := r.client.RandomizedModels()

		received := false
		err := r.client.CompleteStream(ctx, primary, backups, p, func(chunk string) error {
			received = true
			write(chunk)
			return nil
		})
		if err == nil && !received {
			err = fmt.Errorf("empty response from model: %s", primary)
		}
		if err != nil {
			lastErr = err
			log.Printf("LLM stream attempt %d/%d failed: %v", attempt+1, r.maxRetries, err)
			continue
		}

		return nil
	}

	write(fmt.Sprintf("\n\nUnable to get a response after %d attempts. Please try again later.\nLast error: %v", r.maxRetries, lastErr))
	return fmt.Errorf("failed to stream LLM response after %d attempts, last error: %v", r.maxRetries, lastErr)
}
