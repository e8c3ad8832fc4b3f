package providertest

import (
	"context"

	"github.com/millrace/weir/persistence"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func declareProviderTests(
	ctx *context.Context,
	in *In,
	out *Out,
) {
	ginkgo.Describe("type Provider (interface)", func() {
		ginkgo.Describe("func Open()", func() {
			ginkgo.It("returns different data-stores for different processes", func() {
				p := out.NewProvider()

				ds1, err := p.Open(*ctx, "<process-1>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				defer ds1.Close()

				ds2, err := p.Open(*ctx, "<process-2>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				defer ds2.Close()

				gomega.Expect(ds1).ToNot(gomega.BeIdenticalTo(ds2))
			})

			ginkgo.It("locks the data-store for exclusive use", func() {
				p := out.NewProvider()

				ds, err := p.Open(*ctx, in.ProcessKey)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				defer ds.Close()

				_, err = p.Open(*ctx, in.ProcessKey)
				gomega.Expect(err).To(gomega.Equal(persistence.ErrDataStoreLocked))
			})

			ginkgo.It("allows the data-store to be re-opened after it is closed", func() {
				p := out.NewProvider()

				ds, err := p.Open(*ctx, in.ProcessKey)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

				err = ds.Close()
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

				ds, err = p.Open(*ctx, in.ProcessKey)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				ds.Close()
			})
		})
	})
}

// setupDataStore opens a data-store for the process under test.
func setupDataStore(
	ctx context.Context,
	in *In,
	out *Out,
) persistence.DataStore {
	p := out.NewProvider()

	ds, err := p.Open(ctx, in.ProcessKey)
	gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

	return ds
}

// persist commits a batch and asserts that it succeeds.
func persist(
	ctx context.Context,
	ds persistence.DataStore,
	batch ...persistence.Operation,
) {
	err := ds.Persist(ctx, persistence.Batch(batch))
	gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
}
