// Loadtest sends concurrent requests through the load balancer to backends
// started with scripts/backend and reports how the requests were spread.
//
// Usage:
//
//	go run ./scripts/loadtest --url http://localhost:8080/orders --concurrency 10 --requests 900
//
// With N healthy backends and a request count that is a multiple of N, every
// backend should receive exactly requests/N requests. The tool exits with
// status 2 when any request fails or the spread is uneven.
package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type echo struct {
	Backend    string `json:"backend"`
	BodySHA256 string `json:"body_sha256"`
}

type stats struct {
	count     int
	latencies []time.Duration
}

func main() {
	var (
		target      = pflag.String("url", "http://localhost:8080/", "Target URL")
		concurrency = pflag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = pflag.Int("requests", 100, "Total number of requests to send")
		method      = pflag.String("method", http.MethodPost, "HTTP method")
		body        = pflag.String("body", `{"title":"T","description":"d"}`, "Request body")
		contentType = pflag.String("content-type", "application/json", "Content-Type header")
		timeout     = pflag.Duration("timeout", 15*time.Second, "Per-request client timeout")
	)
	pflag.Parse()

	client := &http.Client{Timeout: *timeout}
	sum := sha256.Sum256([]byte(*body))
	wantSHA := hex.EncodeToString(sum[:])

	var (
		mu       sync.Mutex
		backends = map[string]*stats{}
		statuses = map[int]int{}
		failures int
	)

	record := func(backend string, status int, dur time.Duration, failed bool) {
		mu.Lock()
		defer mu.Unlock()
		statuses[status]++
		if failed {
			failures++
			return
		}
		bs, ok := backends[backend]
		if !ok {
			bs = &stats{}
			backends[backend] = bs
		}
		bs.count++
		bs.latencies = append(bs.latencies, dur)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)

	start := time.Now()
	for i := 0; i < *requests; i++ {
		g.Go(func() error {
			req, err := http.NewRequestWithContext(ctx, *method, *target, bytes.NewBufferString(*body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", *contentType)

			t0 := time.Now()
			resp, err := client.Do(req)
			dur := time.Since(t0)
			if err != nil {
				record("", 0, dur, true)
				return nil
			}
			defer resp.Body.Close()

			data, _ := io.ReadAll(resp.Body)
			var e echo
			if resp.StatusCode != http.StatusOK || json.Unmarshal(data, &e) != nil || e.BodySHA256 != wantSHA {
				record("", resp.StatusCode, dur, true)
				return nil
			}
			record(e.Backend, resp.StatusCode, dur, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "load test aborted: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Target: %s\n", *target)
	fmt.Printf("Requests: %d  Concurrency: %d  Failures: %d\n", *requests, *concurrency, failures)
	fmt.Printf("Duration: %v  Throughput: %.2f req/s\n", elapsed, float64(*requests)/elapsed.Seconds())

	var codes []int
	for c := range statuses {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	fmt.Println("\nStatus codes:")
	for _, c := range codes {
		fmt.Printf("  %d -> %d\n", c, statuses[c])
	}

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nBackend distribution:")
	lo, hi := -1, 0
	for _, name := range names {
		bs := backends[name]
		sort.Slice(bs.latencies, func(i, j int) bool { return bs.latencies[i] < bs.latencies[j] })
		p50 := bs.latencies[len(bs.latencies)/2]
		p99 := bs.latencies[int(float64(len(bs.latencies)-1)*0.99)]
		fmt.Printf("  %s -> %d  p50=%v p99=%v\n", name, bs.count, p50, p99)

		if lo < 0 || bs.count < lo {
			lo = bs.count
		}
		if bs.count > hi {
			hi = bs.count
		}
	}

	if failures > 0 || (len(names) > 0 && *requests%len(names) == 0 && hi != lo) {
		os.Exit(2)
	}
}
