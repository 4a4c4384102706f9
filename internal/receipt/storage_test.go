package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = filepath.Join(GinkgoT().TempDir(), "uploads")
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates its directory", func() {
		Expect(tmpDir).To(BeADirectory())
	})

	Describe("Save", func() {
		var (
			name      string
			savedName string
			err       error
		)

		BeforeEach(func() {
			name = "123_receipt.jpg"
		})

		JustBeforeEach(func() {
			savedName, err = storage.Save(name, []byte("image bytes"))
		})

		It("writes the file and returns its name", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(savedName).To(Equal("123_receipt.jpg"))
			Expect(filepath.Join(tmpDir, "123_receipt.jpg")).To(BeAnExistingFile())
		})

		When("the name tries to leave the directory", func() {
			BeforeEach(func() {
				name = "../../escape.jpg"
			})

			It("keeps the file inside the directory", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedName).To(Equal("escape.jpg"))
				Expect(filepath.Join(tmpDir, "escape.jpg")).To(BeAnExistingFile())
				Expect(filepath.Join(filepath.Dir(tmpDir), "escape.jpg")).NotTo(BeAnExistingFile())
			})
		})

		When("the name is empty", func() {
			BeforeEach(func() {
				name = ""
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("invalid file name")))
			})
		})
	})

	Describe("Get", func() {
		BeforeEach(func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "stored.png"), []byte("png bytes"), 0644)).To(Succeed())
		})

		It("returns the file data", func() {
			data, err := storage.Get("stored.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("png bytes"))
		})

		It("returns an error for a missing file", func() {
			_, err := storage.Get("missing.png")
			Expect(err).To(MatchError(ContainSubstring("reading file")))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			_, err := storage.Save("stored.pdf", []byte("pdf bytes"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the file", func() {
			Expect(storage.Delete("stored.pdf")).To(Succeed())
			Expect(filepath.Join(tmpDir, "stored.pdf")).NotTo(BeAnExistingFile())

			_, err := storage.Get("stored.pdf")
			Expect(err).To(HaveOccurred())
		})

		It("returns an error for a missing file", func() {
			Expect(storage.Delete("missing.pdf")).To(MatchError(ContainSubstring("deleting file")))
		})
	})
})
