package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveReceipt", func() {
		var (
			receipt *Receipt
			err     error
		)

		BeforeEach(func() {
			receipt = &Receipt{
				ID:          "test-id",
				StoreName:   ptr("Highlands Coffee"),
				Date:        ptr("12/09/2024 14:45"),
				TotalAmount: ptr(59000.0),
				Category:    "Ăn uống",
				Filename:    "test.jpg",
				ContentType: "image/jpeg",
				Items: []Item{
					{ID: 1, ReceiptID: "test-id", ItemName: ptr("Phin sua da"), Quantity: ptr(1.0), UnitPrice: ptr(29000.0), TotalPrice: ptr(29000.0)},
					{ID: 2, ReceiptID: "test-id", ItemName: nil, TotalPrice: ptr(30000.0)},
				},
				CreatedAt: time.Date(2024, 9, 12, 7, 45, 0, 0, time.UTC),
				UpdatedAt: time.Date(2024, 9, 12, 7, 45, 0, 0, time.UTC),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveReceipt(receipt)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round-trip the receipt with its items", func() {
				saved, getErr := db.GetReceipt("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved).To(Equal(receipt))
			})

			It("should keep unknown values unknown", func() {
				saved, _ := db.GetReceipt("test-id")
				Expect(saved.Items[1].ItemName).To(BeNil())
				Expect(saved.Items[1].Quantity).To(BeNil())
			})
		})

		When("the receipt already exists", func() {
			BeforeEach(func() {
				Expect(db.SaveReceipt(&Receipt{ID: "test-id", Category: "Khác"})).To(Succeed())
			})

			It("should replace it", func() {
				saved, getErr := db.GetReceipt("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Category).To(Equal("Ăn uống"))
				Expect(saved.Items).To(HaveLen(2))
			})
		})
	})

	Describe("GetReceipt", func() {
		var (
			receiptID string
			receipt   *Receipt
			err       error
		)

		JustBeforeEach(func() {
			receipt, err = db.GetReceipt(receiptID)
		})

		When("receipt exists", func() {
			BeforeEach(func() {
				receiptID = "test-id"
				Expect(db.SaveReceipt(&Receipt{ID: "test-id", StoreName: ptr("Test")})).To(Succeed())
			})

			It("should return the receipt", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(receipt.StoreName).To(HaveValue(Equal("Test")))
			})
		})

		When("receipt does not exist", func() {
			BeforeEach(func() {
				receiptID = "nonexistent"
			})

			It("returns ErrNotFound", func() {
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListReceipts", func() {
		var (
			receipts []*Receipt
			err      error
		)

		JustBeforeEach(func() {
			receipts, err = db.ListReceipts()
		})

		When("the database is empty", func() {
			It("should return an empty list", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).NotTo(BeNil())
				Expect(receipts).To(BeEmpty())
			})
		})

		When("receipts exist", func() {
			BeforeEach(func() {
				Expect(db.SaveReceipt(&Receipt{ID: "id1"})).To(Succeed())
				Expect(db.SaveReceipt(&Receipt{ID: "id2"})).To(Succeed())
			})

			It("should return all receipts", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).To(HaveLen(2))
			})
		})
	})

	Describe("DeleteReceipt", func() {
		var (
			receiptID string
			err       error
		)

		JustBeforeEach(func() {
			err = db.DeleteReceipt(receiptID)
		})

		When("receipt exists", func() {
			BeforeEach(func() {
				receiptID = "test-id"
				Expect(db.SaveReceipt(&Receipt{ID: "test-id"})).To(Succeed())
			})

			It("should remove the receipt", func() {
				Expect(err).NotTo(HaveOccurred())
				_, getErr := db.GetReceipt("test-id")
				Expect(getErr).To(MatchError(ErrNotFound))
			})
		})

		When("receipt does not exist", func() {
			BeforeEach(func() {
				receiptID = "nonexistent"
			})

			It("returns ErrNotFound", func() {
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("reopening", func() {
		It("should keep saved receipts", func() {
			Expect(db.SaveReceipt(&Receipt{ID: "persisted"})).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			receipt, err := db.GetReceipt("persisted")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipt.ID).To(Equal("persisted"))
		})
	})
})
