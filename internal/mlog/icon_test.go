package mlog_test

import (
	"github.com/millrace/weir/definition"
	. "github.com/millrace/weir/internal/mlog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Icon", func() {
	Describe("func String()", func() {
		It("returns the icon string", func() {
			Expect(
				MessageIDIcon.String(),
			).To(Equal("="))
		})
	})

	Describe("func WithLabel()", func() {
		It("returns the icon and label", func() {
			Expect(
				MessageIDIcon.WithLabel("<foo>").String(),
			).To(Equal("= <foo>"))
		})

		It("renders a hyphen if the label is empty", func() {
			Expect(
				MessageIDIcon.WithLabel("").String(),
			).To(Equal("= -"))
		})
	})

	Describe("func WithID()", func() {
		It("returns the icon and a truncated UUID", func() {
			Expect(
				MessageIDIcon.WithID("47d10297-8192-40c4-aa77-ad63e7d4a8cb").String(),
			).To(Equal("= 47d10297"))
		})
	})
})

var _ = Describe("func NodeKindIcon()", func() {
	It("returns the expected icon", func() {
		Expect(NodeKindIcon(definition.StartEvent)).To(Equal(EventIcon))
		Expect(NodeKindIcon(definition.BoundaryEvent)).To(Equal(EventIcon))
		Expect(NodeKindIcon(definition.ParallelGateway)).To(Equal(GatewayIcon))
		Expect(NodeKindIcon(definition.ServiceTask)).To(Equal(ActivityIcon))
		Expect(NodeKindIcon(definition.SubProcess)).To(Equal(ActivityIcon))
	})
})
