package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseMoney", func() {
	DescribeTable("parsing amounts",
		func(token string, expected float64) {
			v := ParseMoney(token)
			Expect(v).NotTo(BeNil())
			Expect(*v).To(Equal(expected))
		},
		Entry("comma thousands", "45,000", 45000.0),
		Entry("dot thousands", "1.250.000", 1250000.0),
		Entry("several comma groups", "1,234,567", 1234567.0),
		Entry("spaced groups", "1 250 000", 1250000.0),
		Entry("decimal comma with two digits", "12,50", 12.5),
		Entry("decimal comma with one digit", "12,5", 12.5),
		Entry("dots are never decimals", "12,345.67", 1234567.0),
		Entry("surrounding whitespace", "  99  ", 99.0),
	)

	DescribeTable("rejecting tokens",
		func(token string) {
			Expect(ParseMoney(token)).To(BeNil())
		},
		Entry("empty", ""),
		Entry("only spaces", "   "),
		Entry("letters", "abc"),
		Entry("zero", "0"),
		Entry("negative", "-5"),
		Entry("only separators", ".,"),
		Entry("infinity", "inf"),
		Entry("not a number", "NaN"),
		Entry("hex float", "0x1p4"),
		Entry("upper-case hex float", "0X10P0"),
		Entry("exponent", "1e5"),
		Entry("explicit sign", "+5"),
	)
})

var _ = Describe("parseQuantity", func() {
	var (
		token string
		qty   *float64
	)

	JustBeforeEach(func() {
		qty = parseQuantity(token, DefaultMaxQuantity)
	})

	When("the token is an integer", func() {
		BeforeEach(func() {
			token = "2"
		})

		It("should parse it", func() {
			Expect(*qty).To(Equal(2.0))
		})
	})

	When("the token uses a decimal comma", func() {
		BeforeEach(func() {
			token = "1,5"
		})

		It("should parse it as a fraction", func() {
			Expect(*qty).To(Equal(1.5))
		})
	})

	When("the token is at the sanity bound", func() {
		BeforeEach(func() {
			token = "10000"
		})

		It("should accept it", func() {
			Expect(*qty).To(Equal(10000.0))
		})
	})

	When("the token exceeds the sanity bound", func() {
		BeforeEach(func() {
			token = "20000"
		})

		It("should reject it", func() {
			Expect(qty).To(BeNil())
		})
	})

	When("the token carries a unit code", func() {
		BeforeEach(func() {
			token = "2kg"
		})

		It("should reject it", func() {
			Expect(qty).To(BeNil())
		})
	})

	When("the token is zero", func() {
		BeforeEach(func() {
			token = "0"
		})

		It("should reject it", func() {
			Expect(qty).To(BeNil())
		})
	})
})
