package lookup_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/migration-tracker/internal"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
)

func TestLookup(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lookup Suite")
}

// Mock lookup source for testing. ResolveAll fans refs out across
// goroutines, so the call counter needs its own lock.
type mockSource struct {
	mu      sync.Mutex
	options map[string][]lookup.Option
	errs    map[string]error
	calls   map[string]int
}

func newMockSource() *mockSource {
	return &mockSource{
		options: make(map[string][]lookup.Option),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (m *mockSource) Resolve(ctx context.Context, ref string) ([]lookup.Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[ref]++
	if err, ok := m.errs[ref]; ok {
		return nil, err
	}
	return m.options[ref], nil
}

func (m *mockSource) callCount(ref string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ref]
}

var _ = Describe("Resolver", func() {
	var (
		source   *mockSource
		resolver *lookup.Resolver
		ctx      context.Context
	)

	BeforeEach(func() {
		source = newMockSource()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = lookup.NewResolver(source, logger)
		ctx = context.Background()
	})

	Describe("Resolve", func() {
		It("should return options from the source", func() {
			source.options["lookup:environments"] = []lookup.Option{{Key: "dev", Label: "Development"}}

			opts, err := resolver.NewBatch().Resolve(ctx, "lookup:environments")

			Expect(err).NotTo(HaveOccurred())
			Expect(opts).To(HaveLen(1))
			Expect(opts[0].Key).To(Equal("dev"))
		})

		It("should return an empty set for an empty ref", func() {
			opts, err := resolver.NewBatch().Resolve(ctx, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(opts).To(BeEmpty())
			Expect(source.callCount("")).To(BeZero())
		})

		It("should hit the source once per ref within a batch", func() {
			source.options["lookup:environments"] = []lookup.Option{{Key: "dev", Label: "Development"}}
			batch := resolver.NewBatch()

			for i := 0; i < 3; i++ {
				_, err := batch.Resolve(ctx, "lookup:environments")
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(source.callCount("lookup:environments")).To(Equal(1))
		})

		It("should not cache across batches", func() {
			source.options["lookup:environments"] = []lookup.Option{{Key: "dev", Label: "Development"}}

			_, err := resolver.NewBatch().Resolve(ctx, "lookup:environments")
			Expect(err).NotTo(HaveOccurred())
			_, err = resolver.NewBatch().Resolve(ctx, "lookup:environments")
			Expect(err).NotTo(HaveOccurred())

			Expect(source.callCount("lookup:environments")).To(Equal(2))
		})

		It("should wrap source failures and cache them within the batch", func() {
			source.errs["lookup:broken"] = errors.New("connection refused")
			batch := resolver.NewBatch()

			_, err := batch.Resolve(ctx, "lookup:broken")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeLookupUnavailable))

			_, err = batch.Resolve(ctx, "lookup:broken")
			Expect(err).To(HaveOccurred())
			Expect(source.callCount("lookup:broken")).To(Equal(1))
		})
	})

	Describe("ResolveAll", func() {
		It("should resolve distinct refs and report failures per ref", func() {
			source.options["lookup:environments"] = []lookup.Option{{Key: "dev", Label: "Development"}}
			source.errs["lookup:broken"] = errors.New("timeout")

			resolved, failed := resolver.NewBatch().ResolveAll(ctx,
				[]string{"lookup:environments", "lookup:environments", "lookup:broken", ""})

			Expect(resolved).To(HaveKey("lookup:environments"))
			Expect(failed).To(HaveKey("lookup:broken"))
			Expect(source.callCount("lookup:environments")).To(Equal(1))
		})

		It("should not let one failing ref abort the others", func() {
			source.options["lookup:waves"] = []lookup.Option{{Key: "wave-1", Label: "Wave 1"}}
			source.errs["lookup:broken"] = errors.New("timeout")

			resolved, failed := resolver.NewBatch().ResolveAll(ctx, []string{"lookup:broken", "lookup:waves"})

			Expect(resolved["lookup:waves"]).To(HaveLen(1))
			Expect(failed).To(HaveLen(1))
		})
	})
})
