package providertest

import (
	"context"

	"github.com/millrace/weir/persistence"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func declareDataObjectTests(
	ctx *context.Context,
	in *In,
	out *Out,
) {
	ginkgo.Describe("data objects", func() {
		var ds persistence.DataStore

		ginkgo.BeforeEach(func() {
			ds = setupDataStore(*ctx, in, out)
		})

		ginkgo.AfterEach(func() {
			ds.Close()
		})

		ginkgo.Describe("func LoadDataObject()", func() {
			ginkgo.It("returns ErrDataObjectNotFound for an unknown data object", func() {
				_, err := ds.LoadDataObject(*ctx, "<instance>", "<object>")
				gomega.Expect(err).To(gomega.MatchError(persistence.ErrDataObjectNotFound))
			})

			ginkgo.It("returns the most recently saved content", func() {
				obj := persistence.DataObject{
					InstanceID:   "<instance>",
					DataObjectID: "<object>",
					Content:      []byte("<content-1>"),
				}

				persist(*ctx, ds, persistence.SaveDataObject{Object: obj})

				obj.Content = []byte("<content-2>")
				persist(*ctx, ds, persistence.SaveDataObject{Object: obj})

				content, err := ds.LoadDataObject(*ctx, "<instance>", "<object>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(content).To(gomega.Equal([]byte("<content-2>")))
			})
		})

		ginkgo.Describe("operation RemoveDataObject", func() {
			ginkgo.It("removes the data object", func() {
				obj := persistence.DataObject{
					InstanceID:   "<instance>",
					DataObjectID: "<object>",
					Content:      []byte("<content>"),
				}

				persist(*ctx, ds, persistence.SaveDataObject{Object: obj})
				persist(*ctx, ds, persistence.RemoveDataObject{Object: obj})

				_, err := ds.LoadDataObject(*ctx, "<instance>", "<object>")
				gomega.Expect(err).To(gomega.MatchError(persistence.ErrDataObjectNotFound))
			})

			ginkgo.It("succeeds when the data object does not exist", func() {
				obj := persistence.DataObject{
					InstanceID:   "<instance>",
					DataObjectID: "<object>",
				}

				persist(*ctx, ds, persistence.RemoveDataObject{Object: obj})
			})
		})
	})
}
