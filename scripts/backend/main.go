// Backend is a small HTTP server to run behind the load balancer. It answers
// every path with a JSON description of the request it received, so the
// forwarded method, target, headers and body can be checked by eye or by
// scripts/loadtest.
//
// Usage:
//
//	go run ./scripts/backend --port 9090 --name b1
//	go run ./scripts/backend --port 9091 --name b2 --delay 12s
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

// Echo is the response body returned for every request.
type Echo struct {
	ID         string              `json:"id"`
	Backend    string              `json:"backend"`
	Method     string              `json:"method"`
	Target     string              `json:"target"`
	Host       string              `json:"host"`
	Header     map[string][]string `json:"header"`
	BodyBytes  int                 `json:"body_bytes"`
	BodySHA256 string              `json:"body_sha256"`
}

func main() {
	port := pflag.Int("port", 9090, "port to listen on")
	name := pflag.String("name", "", "name reported in responses (default: host:port)")
	delay := pflag.Duration("delay", 0, "sleep before answering, to exercise the proxy timeout")
	status := pflag.Int("status", http.StatusOK, "status code to answer with")
	pflag.Parse()

	addr := fmt.Sprintf(":%d", *port)
	if *name == "" {
		host, _ := os.Hostname()
		*name = fmt.Sprintf("%s%s", host, addr)
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if *delay > 0 {
			time.Sleep(*delay)
		}

		sum := sha256.Sum256(body)
		echo := Echo{
			ID:         uuid.NewString(),
			Backend:    *name,
			Method:     r.Method,
			Target:     r.RequestURI,
			Host:       r.Host,
			Header:     r.Header,
			BodyBytes:  len(body),
			BodySHA256: hex.EncodeToString(sum[:]),
		}

		log.Printf("request: id=%s method=%s target=%s from=%s bytes=%d", echo.ID, r.Method, r.RequestURI, r.RemoteAddr, len(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(*status)
		json.NewEncoder(w).Encode(echo)
	})

	log.Printf("starting backend %s on %s", *name, addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
