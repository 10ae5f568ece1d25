package backend_test

import (
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/proxyangel/load-balancer/internal/backend"
)

var _ = Describe("Backend", func() {
	var (
		testURL *url.URL
		b       *backend.Backend
	)

	BeforeEach(func() {
		var err error
		testURL, err = url.Parse("http://localhost:9090")
		Expect(err).NotTo(HaveOccurred())
		b = backend.New(testURL)
	})

	Describe("New", func() {
		It("should create a backend with the correct URL", func() {
			Expect(b).NotTo(BeNil())
			Expect(b.URL()).To(Equal(testURL))
			Expect(b.String()).To(Equal("http://localhost:9090"))
		})

		It("should handle different URL schemes", func() {
			httpsURL, _ := url.Parse("https://example.com:443")
			httpsBackend := backend.New(httpsURL)
			Expect(httpsBackend.URL().Scheme).To(Equal("https"))
			Expect(httpsBackend.URL().Host).To(Equal("example.com:443"))
		})
	})

	Describe("Target", func() {
		It("should append the request target to the base", func() {
			Expect(b.Target("/courses?id=7")).To(Equal("http://localhost:9090/courses?id=7"))
		})

		It("should keep escaped characters untouched", func() {
			Expect(b.Target("/a%2Fb/c%20d?q=x%26y&q=z")).
				To(Equal("http://localhost:9090/a%2Fb/c%20d?q=x%26y&q=z"))
		})

		It("should keep a base path prefix", func() {
			withPath, err := backend.Parse("http://localhost:9090/api")
			Expect(err).NotTo(HaveOccurred())
			Expect(withPath.Target("/v1/items")).To(Equal("http://localhost:9090/api/v1/items"))
		})
	})

	DescribeTable("Parse",
		func(raw string, valid bool) {
			parsed, err := backend.Parse(raw)
			if valid {
				Expect(err).NotTo(HaveOccurred())
				Expect(parsed.String()).To(Equal(raw))
			} else {
				Expect(err).To(HaveOccurred())
				Expect(parsed).To(BeNil())
			}
		},
		Entry("http with port", "http://localhost:9090", true),
		Entry("https host", "https://api.example.com", true),
		Entry("empty", "", false),
		Entry("missing scheme", "localhost:9090", false),
		Entry("ftp scheme", "ftp://localhost:21", false),
		Entry("missing host", "http://", false),
		Entry("unparseable", "://invalid", false),
	)
})
