package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		origHome   string
		origXDG    string
		origSQLite string
		origCwd    string
	)

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		origSQLite = os.Getenv("GENAI_SQLITE")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Setenv("GENAI_SQLITE", origSQLite)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	isolate := func() string {
		homeDir := GinkgoT().TempDir()
		cwd := GinkgoT().TempDir()
		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("GENAI_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(cwd)).To(Succeed())
		return homeDir
	}

	It("returns the override", func() {
		path, err := ResolveSQLitePath("/tmp/override.sqlite")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/override.sqlite"))
	})

	It("prefers GENAI_SQLITE when set", func() {
		Expect(os.Setenv("GENAI_SQLITE", "/tmp/custom.sqlite")).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.sqlite"))
	})

	It("resolves ~/.genai/genai.sqlite when present", func() {
		homeDir := isolate()

		dbPath := filepath.Join(homeDir, ".genai", FileName)
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("prefers a local .genai database over the home one", func() {
		homeDir := isolate()

		home := filepath.Join(homeDir, ".genai", FileName)
		Expect(os.MkdirAll(filepath.Dir(home), 0o755)).To(Succeed())
		Expect(os.WriteFile(home, []byte("test"), 0o644)).To(Succeed())

		Expect(os.MkdirAll(".genai", 0o755)).To(Succeed())
		local := filepath.Join(".genai", FileName)
		Expect(os.WriteFile(local, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(local))
	})

	It("fails when no database exists", func() {
		isolate()

		_, err := ResolveSQLitePath("")
		Expect(err).To(MatchError(ContainSubstring("could not find genai SQLite database")))
	})
})

var _ = Describe("DefaultSQLitePath", func() {
	It("places the database in the config dir", func() {
		dir := GinkgoT().TempDir()
		path, err := DefaultSQLitePath(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, FileName)))
	})
})
