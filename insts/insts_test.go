package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/javiercbk/8086/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should name registers by code and width", func() {
		Expect(insts.RegName(0b000, false)).To(Equal("al"))
		Expect(insts.RegName(0b000, true)).To(Equal("ax"))
		Expect(insts.RegName(0b100, false)).To(Equal("ah"))
		Expect(insts.RegName(0b100, true)).To(Equal("sp"))
		Expect(insts.RegName(0b111, false)).To(Equal("bh"))
		Expect(insts.RegName(0b111, true)).To(Equal("di"))
	})
})
