package providertest

import (
	"context"

	"github.com/millrace/weir/persistence"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func declareProcessInstanceTests(
	ctx *context.Context,
	in *In,
	out *Out,
) {
	ginkgo.Describe("process instance records", func() {
		var (
			ds   persistence.DataStore
			inst persistence.ProcessInstance
		)

		ginkgo.BeforeEach(func() {
			ds = setupDataStore(*ctx, in, out)

			inst = persistence.ProcessInstance{
				ProcessKey: in.ProcessKey,
				InstanceID: "<instance>",
				StartNodes: []string{"<start>"},
				Edges: []persistence.Edge{
					{From: "<start>", To: "<end>"},
				},
			}
		})

		ginkgo.AfterEach(func() {
			ds.Close()
		})

		ginkgo.Describe("func LoadProcessInstance()", func() {
			ginkgo.It("returns ErrInstanceNotFound for an unknown instance", func() {
				_, err := ds.LoadProcessInstance(*ctx, "<unknown>")
				gomega.Expect(err).To(gomega.MatchError(persistence.ErrInstanceNotFound))
			})

			ginkgo.It("returns the record as persisted", func() {
				persist(*ctx, ds, persistence.SaveProcessInstance{Instance: inst})

				loaded, err := ds.LoadProcessInstance(*ctx, "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(loaded.Revision).To(gomega.BeEquivalentTo(1))
				gomega.Expect(loaded.StartNodes).To(gomega.Equal(inst.StartNodes))
				gomega.Expect(loaded.Edges).To(gomega.Equal(inst.Edges))
			})
		})

		ginkgo.Describe("operation RemoveProcessInstance", func() {
			ginkgo.It("removes the instance and all of its associated records", func() {
				persist(
					*ctx,
					ds,
					persistence.SaveProcessInstance{Instance: inst},
					persistence.SaveNodeInstance{
						Instance: persistence.NodeInstance{
							NodeID:     "<node>",
							InstanceID: "<instance>",
						},
					},
					persistence.SaveDataObject{
						Object: persistence.DataObject{
							InstanceID:   "<instance>",
							DataObjectID: "<object>",
							Content:      []byte("<content>"),
						},
					},
				)

				loaded, err := ds.LoadProcessInstance(*ctx, "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

				persist(*ctx, ds, persistence.RemoveProcessInstance{Instance: loaded})

				_, err = ds.LoadProcessInstance(*ctx, "<instance>")
				gomega.Expect(err).To(gomega.MatchError(persistence.ErrInstanceNotFound))

				instances, err := ds.ListNodeInstances(*ctx, "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(instances).To(gomega.BeEmpty())

				_, err = ds.LoadDataObject(*ctx, "<instance>", "<object>")
				gomega.Expect(err).To(gomega.MatchError(persistence.ErrDataObjectNotFound))
			})

			ginkgo.It("causes a conflict when the revision is stale", func() {
				persist(*ctx, ds, persistence.SaveProcessInstance{Instance: inst})

				err := ds.Persist(
					*ctx,
					persistence.Batch{
						persistence.RemoveProcessInstance{
							Instance: inst, // stale, revision 0
						},
					},
				)
				gomega.Expect(err).To(gomega.BeAssignableToTypeOf(persistence.ConflictError{}))
			})
		})

		ginkgo.Describe("operation ArchiveProcessInstance", func() {
			ginkgo.It("removes the instance from the live keyspace", func() {
				persist(*ctx, ds, persistence.SaveProcessInstance{Instance: inst})

				loaded, err := ds.LoadProcessInstance(*ctx, "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

				persist(*ctx, ds, persistence.ArchiveProcessInstance{Instance: loaded})

				_, err = ds.LoadProcessInstance(*ctx, "<instance>")
				gomega.Expect(err).To(gomega.MatchError(persistence.ErrInstanceNotFound))
			})
		})
	})
}
