package providertest

import (
	"context"
	"time"

	"github.com/millrace/weir/persistence"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func declareTimerTests(
	ctx *context.Context,
	in *In,
	out *Out,
) {
	ginkgo.Describe("timers", func() {
		var (
			ds  persistence.DataStore
			now time.Time
		)

		ginkgo.BeforeEach(func() {
			ds = setupDataStore(*ctx, in, out)
			now = time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)
		})

		ginkgo.AfterEach(func() {
			ds.Close()
		})

		ginkgo.Describe("func LoadDueTimers()", func() {
			ginkgo.It("returns only the timers that are due", func() {
				persist(
					*ctx,
					ds,
					persistence.SaveTimer{
						Timer: persistence.Timer{
							NodeID:     "<due>",
							InstanceID: "<instance>",
							FireAt:     now.Add(-1 * time.Second),
						},
					},
					persistence.SaveTimer{
						Timer: persistence.Timer{
							NodeID:     "<future>",
							InstanceID: "<instance>",
							FireAt:     now.Add(1 * time.Hour),
						},
					},
				)

				due, err := ds.LoadDueTimers(*ctx, now)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(due).To(gomega.HaveLen(1))
				gomega.Expect(due[0].NodeID).To(gomega.Equal("<due>"))
			})

			ginkgo.It("includes timers due exactly at the query time", func() {
				persist(
					*ctx,
					ds,
					persistence.SaveTimer{
						Timer: persistence.Timer{
							NodeID:     "<node>",
							InstanceID: "<instance>",
							FireAt:     now,
						},
					},
				)

				due, err := ds.LoadDueTimers(*ctx, now)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(due).To(gomega.HaveLen(1))
			})
		})

		ginkgo.Describe("operation SaveTimer", func() {
			ginkgo.It("replaces the existing timer for the same node and instance", func() {
				persist(
					*ctx,
					ds,
					persistence.SaveTimer{
						Timer: persistence.Timer{
							NodeID:     "<node>",
							InstanceID: "<instance>",
							FireAt:     now.Add(-1 * time.Minute),
						},
					},
				)

				persist(
					*ctx,
					ds,
					persistence.SaveTimer{
						Timer: persistence.Timer{
							NodeID:     "<node>",
							InstanceID: "<instance>",
							FireAt:     now.Add(1 * time.Hour),
							Firings:    1,
						},
					},
				)

				due, err := ds.LoadDueTimers(*ctx, now)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(due).To(gomega.BeEmpty())
			})
		})

		ginkgo.Describe("operation RemoveTimer", func() {
			ginkgo.It("removes the timer", func() {
				t := persistence.Timer{
					NodeID:     "<node>",
					InstanceID: "<instance>",
					FireAt:     now.Add(-1 * time.Minute),
				}

				persist(*ctx, ds, persistence.SaveTimer{Timer: t})
				persist(*ctx, ds, persistence.RemoveTimer{Timer: t})

				due, err := ds.LoadDueTimers(*ctx, now)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(due).To(gomega.BeEmpty())
			})
		})
	})
}
