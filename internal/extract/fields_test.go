package extract

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractFields", func() {
	var (
		text   string
		fields Fields
	)

	JustBeforeEach(func() {
		fields = ExtractFields(text)
	})

	When("the receipt is a simple convenience store slip", func() {
		BeforeEach(func() {
			text = "CIRCLE K\n12/09/2024\nTOTAL: 45,000"
		})

		It("should take the first line as the store name", func() {
			Expect(*fields.StoreName).To(Equal("CIRCLE K"))
		})

		It("should find the date", func() {
			Expect(*fields.Date).To(Equal("12/09/2024"))
		})

		It("should find the total", func() {
			Expect(*fields.TotalAmount).To(Equal(45000.0))
		})
	})

	When("the receipt has a subtotal and a total", func() {
		BeforeEach(func() {
			text = "SHOP ABC\nSUBTOTAL 100,000\nTOTAL 120,000"
		})

		It("should prefer the total line", func() {
			Expect(*fields.TotalAmount).To(Equal(120000.0))
		})
	})

	When("there is no date anywhere", func() {
		BeforeEach(func() {
			text = "SHOP ABC\nMILK 1 10,000 10,000\nTOTAL 10,000"
		})

		It("should leave the date unknown", func() {
			Expect(fields.Date).To(BeNil())
		})
	})

	When("the first line is very long", func() {
		BeforeEach(func() {
			text = strings.Repeat("Á", 300) + "\nTOTAL 10,000"
		})

		It("should truncate the store name to 255 characters", func() {
			Expect(utf8.RuneCountInString(*fields.StoreName)).To(Equal(255))
		})
	})

	When("the text is blank", func() {
		BeforeEach(func() {
			text = "  \n\t "
		})

		It("should leave every field unknown", func() {
			Expect(fields.StoreName).To(BeNil())
			Expect(fields.Date).To(BeNil())
			Expect(fields.TotalAmount).To(BeNil())
		})
	})

	When("the text has no numbers", func() {
		BeforeEach(func() {
			text = "SHOP\nTHANK YOU"
		})

		It("should leave the total unknown", func() {
			Expect(fields.TotalAmount).To(BeNil())
		})
	})
})

var _ = Describe("date stages", func() {
	var doc *Document

	Describe("labeledDate", func() {
		When("a date label precedes a date and time", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\nHotline 0909 123 456\nNgày: 02/09/2026 14:45\nTOTAL 50,000")
			})

			It("should return the date with its time", func() {
				Expect(*labeledDate(doc)).To(Equal("02/09/2026 14:45"))
			})
		})

		When("the labeled date is year first", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\nDate: 2026-03-04")
			})

			It("should return it", func() {
				Expect(*labeledDate(doc)).To(Equal("2026-03-04"))
			})
		})

		When("no line carries a label", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\n12/09/2024")
			})

			It("should return nil", func() {
				Expect(labeledDate(doc)).To(BeNil())
			})
		})
	})

	Describe("unlabeledDate", func() {
		When("the only date is year first with a time", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\n2024-12-31 10:00")
			})

			It("should return the date without the time", func() {
				Expect(*unlabeledDate(doc)).To(Equal("2024-12-31"))
			})
		})

		When("both layouts appear", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\n2024-12-31\n30/12/2024")
			})

			It("should prefer day first", func() {
				Expect(*unlabeledDate(doc)).To(Equal("30/12/2024"))
			})
		})
	})

	When("a labeled date and an earlier unlabeled date both exist", func() {
		BeforeEach(func() {
			doc = NewDocument("SHOP\nPrinted 01/01/2025\nDate: 2026-03-04")
		})

		It("should let the labeled stage win", func() {
			Expect(*firstDate(doc)).To(Equal("2026-03-04"))
		})
	})
})

var _ = Describe("total stages", func() {
	var doc *Document

	Describe("strictTotal", func() {
		When("several total lines exist", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\nTOTAL 100,000\nTAX 15,000\nAMOUNT DUE 150,000")
			})

			It("should take the largest", func() {
				Expect(*strictTotal(doc)).To(Equal(150000.0))
			})
		})

		When("the total uses a decimal comma", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\nTOTAL 12,50")
			})

			It("should parse the decimal", func() {
				Expect(*strictTotal(doc)).To(Equal(12.5))
			})
		})

		When("only subtotal and tax lines exist", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\nSUBTOTAL 90,000\nVAT 9,000")
			})

			It("should return nil", func() {
				Expect(strictTotal(doc)).To(BeNil())
			})
		})
	})

	Describe("keywordTotal", func() {
		When("only a subtotal line exists", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\nSUBTOTAL 90,000\nVAT 9,000")
			})

			It("should fall back to it", func() {
				Expect(*keywordTotal(doc)).To(Equal(90000.0))
				Expect(*firstTotal(doc)).To(Equal(90000.0))
			})
		})

		When("the amount is labeled without diacritics", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\nThanh toan tien mat 55.000")
			})

			It("should match the keyword", func() {
				Expect(*keywordTotal(doc)).To(Equal(55000.0))
			})
		})
	})

	Describe("largestAmount", func() {
		When("no line has a total keyword", func() {
			BeforeEach(func() {
				doc = NewDocument("SHOP\nMILK 12,000\nBREAD 30,000")
			})

			It("should return the largest number", func() {
				Expect(keywordTotal(doc)).To(BeNil())
				Expect(*largestAmount(doc)).To(Equal(30000.0))
				Expect(*firstTotal(doc)).To(Equal(30000.0))
			})
		})
	})
})
