package providertest

import (
	"context"
	"time"

	"github.com/millrace/weir/persistence"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func declareNodeInstanceTests(
	ctx *context.Context,
	in *In,
	out *Out,
) {
	ginkgo.Describe("node instance records", func() {
		var ds persistence.DataStore

		ginkgo.BeforeEach(func() {
			ds = setupDataStore(*ctx, in, out)
		})

		ginkgo.AfterEach(func() {
			ds.Close()
		})

		ginkgo.Describe("func LoadNodeInstance()", func() {
			ginkgo.It("returns a freshly-inactive record at revision zero for an unknown instance", func() {
				inst, err := ds.LoadNodeInstance(*ctx, "<node>", "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

				gomega.Expect(inst).To(gomega.Equal(persistence.NodeInstance{
					NodeID:     "<node>",
					InstanceID: "<instance>",
				}))
			})

			ginkgo.It("returns the record as persisted", func() {
				saved := persistence.NodeInstance{
					NodeID:     "<node>",
					InstanceID: "<instance>",
					State:      persistence.Active,
					FlowsFired: 2,
					StartedAt:  time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC),
				}

				persist(*ctx, ds, persistence.SaveNodeInstance{Instance: saved})

				inst, err := ds.LoadNodeInstance(*ctx, "<node>", "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

				saved.Revision = 1
				gomega.Expect(inst.Revision).To(gomega.Equal(saved.Revision))
				gomega.Expect(inst.State).To(gomega.Equal(saved.State))
				gomega.Expect(inst.FlowsFired).To(gomega.Equal(saved.FlowsFired))
				gomega.Expect(inst.StartedAt.Equal(saved.StartedAt)).To(gomega.BeTrue())
			})
		})

		ginkgo.Describe("func ListNodeInstances()", func() {
			ginkgo.It("returns only the records of the given process instance", func() {
				persist(
					*ctx,
					ds,
					persistence.SaveNodeInstance{
						Instance: persistence.NodeInstance{
							NodeID:     "<node-1>",
							InstanceID: "<instance-1>",
						},
					},
					persistence.SaveNodeInstance{
						Instance: persistence.NodeInstance{
							NodeID:     "<node-2>",
							InstanceID: "<instance-1>",
						},
					},
					persistence.SaveNodeInstance{
						Instance: persistence.NodeInstance{
							NodeID:     "<node-1>",
							InstanceID: "<instance-2>",
						},
					},
				)

				instances, err := ds.ListNodeInstances(*ctx, "<instance-1>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(instances).To(gomega.HaveLen(2))

				for _, inst := range instances {
					gomega.Expect(inst.InstanceID).To(gomega.Equal("<instance-1>"))
				}
			})
		})

		ginkgo.Describe("operation SaveNodeInstance", func() {
			ginkgo.It("increments the revision on each save", func() {
				inst := persistence.NodeInstance{
					NodeID:     "<node>",
					InstanceID: "<instance>",
				}

				persist(*ctx, ds, persistence.SaveNodeInstance{Instance: inst})

				inst, err := ds.LoadNodeInstance(*ctx, "<node>", "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(inst.Revision).To(gomega.BeEquivalentTo(1))

				persist(*ctx, ds, persistence.SaveNodeInstance{Instance: inst})

				inst, err = ds.LoadNodeInstance(*ctx, "<node>", "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(inst.Revision).To(gomega.BeEquivalentTo(2))
			})

			ginkgo.It("rejects the batch entirely when the revision is stale", func() {
				inst := persistence.NodeInstance{
					NodeID:     "<node>",
					InstanceID: "<instance>",
				}

				persist(*ctx, ds, persistence.SaveNodeInstance{Instance: inst})

				err := ds.Persist(
					*ctx,
					persistence.Batch{
						persistence.SaveNodeInstance{
							Instance: persistence.NodeInstance{
								NodeID:     "<other-node>",
								InstanceID: "<instance>",
							},
						},
						persistence.SaveNodeInstance{
							Instance: inst, // stale, revision 0
						},
					},
				)
				gomega.Expect(err).To(gomega.BeAssignableToTypeOf(persistence.ConflictError{}))

				// The non-conflicting operation must not have been applied.
				other, err := ds.LoadNodeInstance(*ctx, "<other-node>", "<instance>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(other.Revision).To(gomega.BeEquivalentTo(0))
			})
		})
	})
}
