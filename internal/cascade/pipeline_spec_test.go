package cascade_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/topology"
)

var _ = Describe("Pipeline", func() {
	var (
		ctx context.Context
		p   *cascade.Pipeline
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("on the example topology", func() {
		BeforeEach(func() {
			var err error
			p, err = cascade.New(graph.Example())
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts running with a single iteration", func() {
			Expect(p.Status()).To(Equal(cascade.Running))
			Expect(p.History().IterCount()).To(Equal(1))
			Expect(p.History().Alpha).To(Equal(cascade.DefaultAlpha))
		})

		It("records one severity and one resilience entry per round", func() {
			_, err := p.Round(ctx)
			Expect(err).NotTo(HaveOccurred())

			h := p.History()
			Expect(h.KS()).To(HaveLen(1))
			Expect(h.BetaDeltas()).To(HaveLen(1))
			Expect(h.Active().Graph.Alive()).To(BeNumerically("<", 10))
			Expect(h.At(0).Graph.Alive()).To(Equal(10))
		})

		It("leaves earlier iterations untouched", func() {
			_, err := p.Round(ctx)
			Expect(err).NotTo(HaveOccurred())
			before := p.History().At(0).Graph.Desc()

			_, err = p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.History().At(0).Graph.Desc()).To(Equal(before))
		})

		It("halts once the network fragments", func() {
			status, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(cascade.HaltedDisconnected))
			Expect(p.History().IterCount()).To(Equal(3))
		})
	})

	Context("on a complete graph", func() {
		BeforeEach(func() {
			var err error
			p, err = cascade.New(topology.NewNet(5))
			Expect(err).NotTo(HaveOccurred())
		})

		It("converges without any cascade", func() {
			status, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(cascade.Converged))
			Expect(p.History().KS()).To(Equal([]float64{0, 0, 0}))
			Expect(p.History().Cascades()).To(Equal([]int{0, 0, 0}))
			Expect(p.History().IterCount()).To(Equal(3))
		})

		It("drops the terminal two-node iteration", func() {
			_, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.History().Active().Graph.Alive()).To(Equal(3))
		})
	})

	DescribeTable("rejects invalid configuration",
		func(d graph.Desc, opts []cascade.Option, want error) {
			_, err := cascade.New(d, opts...)
			Expect(err).To(MatchError(want))
		},
		Entry("too few nodes", topology.NewLine(2), nil, cascade.ErrTooFewNodes),
		Entry("negative alpha", graph.Example(), []cascade.Option{cascade.WithAlpha(-0.5)}, cascade.ErrInvalidAlpha),
		Entry("removal before snapshot", graph.Example(),
			[]cascade.Option{cascade.WithSteps(cascade.UpdatePaths, cascade.Betweenness, cascade.RemoveMax)},
			cascade.ErrInvalidPlan),
	)
})
