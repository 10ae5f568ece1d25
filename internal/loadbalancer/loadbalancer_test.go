package loadbalancer_test

import (
	"net/url"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/proxyangel/load-balancer/internal/backend"
	"github.com/proxyangel/load-balancer/internal/loadbalancer"
	"github.com/proxyangel/load-balancer/internal/strategy"
)

var _ = Describe("LoadBalancer", func() {
	var (
		strat    *strategy.RoundRobin
		lb       *loadbalancer.LoadBalancer
		backends []*backend.Backend
	)

	BeforeEach(func() {
		strat = strategy.NewRoundRobinStrategy()

		backends = []*backend.Backend{
			backend.New(mustParseURL("http://localhost:8081")),
			backend.New(mustParseURL("http://localhost:8082")),
			backend.New(mustParseURL("http://localhost:8083")),
		}

		var err error
		lb, err = loadbalancer.NewLoadBalancer(strat, backends)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewLoadBalancer", func() {
		It("should create a load balancer with given strategy", func() {
			Expect(lb).NotTo(BeNil())
			Expect(lb.Size()).To(Equal(3))
		})

		It("should reject an empty pool", func() {
			empty, err := loadbalancer.NewLoadBalancer(strat, nil)
			Expect(err).To(MatchError(loadbalancer.ErrNoBackends))
			Expect(empty).To(BeNil())
		})

		It("should not be affected by later changes to the input slice", func() {
			backends[0] = backend.New(mustParseURL("http://localhost:9999"))
			Expect(lb.Backends()[0].String()).To(Equal("http://localhost:8081"))
		})
	})

	Describe("Next", func() {
		It("should rotate through the pool in configuration order", func() {
			var got []string
			for i := 0; i < 6; i++ {
				got = append(got, lb.Next().String())
			}
			Expect(got).To(Equal([]string{
				"http://localhost:8081",
				"http://localhost:8082",
				"http://localhost:8083",
				"http://localhost:8081",
				"http://localhost:8082",
				"http://localhost:8083",
			}))
		})

		It("should advance the counter once per call under concurrency", func() {
			const calls = 500

			var wg sync.WaitGroup
			for i := 0; i < calls; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(lb.Next()).NotTo(BeNil())
				}()
			}
			wg.Wait()

			Expect(strat.Count()).To(Equal(uint64(calls)))
		})
	})

	Describe("Backends", func() {
		It("should return a copy of the pool", func() {
			pool := lb.Backends()
			pool[0] = nil
			Expect(lb.Backends()[0]).NotTo(BeNil())
		})
	})
})

func mustParseURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}
