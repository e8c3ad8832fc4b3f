package persistence_test

import (
	. "github.com/millrace/weir/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Batch", func() {
	Describe("func MustValidate()", func() {
		It("does not panic when the batch contains distinct entities", func() {
			batch := Batch{
				SaveNodeInstance{
					Instance: NodeInstance{NodeID: "<node-1>", InstanceID: "<instance>"},
				},
				SaveNodeInstance{
					Instance: NodeInstance{NodeID: "<node-2>", InstanceID: "<instance>"},
				},
				SaveProcessInstance{
					Instance: ProcessInstance{InstanceID: "<instance>"},
				},
			}

			Expect(func() {
				batch.MustValidate()
			}).NotTo(Panic())
		})

		It("panics when the batch contains multiple operations for the same entity", func() {
			batch := Batch{
				SaveNodeInstance{
					Instance: NodeInstance{NodeID: "<node>", InstanceID: "<instance>"},
				},
				SaveNodeInstance{
					Instance: NodeInstance{NodeID: "<node>", InstanceID: "<instance>"},
				},
			}

			Expect(func() {
				batch.MustValidate()
			}).To(Panic())
		})
	})
})
