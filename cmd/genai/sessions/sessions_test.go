package sessionscmder_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	sessionscmder "github.com/papercomputeco/genai/cmd/genai/sessions"
	"github.com/papercomputeco/genai/pkg/storage"
	"github.com/papercomputeco/genai/pkg/storage/sqlite"
	testutils "github.com/papercomputeco/genai/pkg/utils/test"
)

var _ = Describe("Sessions command", func() {
	var (
		tmpDir  string
		origDir string
		dbPath  string
		out     *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := sessionscmder.NewSessionsCmd()
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "genai-sessions-test-*")
		Expect(err).NotTo(HaveOccurred())
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".genai"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		out = &bytes.Buffer{}
		dbPath = filepath.Join(tmpDir, "recorded.sqlite")

		ctx := context.Background()
		driver, err := sqlite.NewSQLiteDriver(ctx, dbPath)
		Expect(err).NotTo(HaveOccurred())
		for seq, payload := range []string{`{"n":0}`, `{"n":1}`} {
			_, err := driver.PutRecord(ctx, testutils.NewTestRecord("sess-1", seq, payload))
			Expect(err).NotTo(HaveOccurred())
		}
		bad := testutils.NewTestRecord("sess-1", 2, `{"n":`)
		bad.Kind = storage.KindDecodeError
		bad.Error = "unexpected end of JSON input"
		_, err = driver.PutRecord(ctx, bad)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.Close()).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	It("lists recorded sessions", func() {
		Expect(execute("list", "--sqlite", dbPath)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("sess-1"))
		Expect(out.String()).To(ContainSubstring("test-provider"))
		Expect(out.String()).To(ContainSubstring("test-model"))
	})

	It("shows the records of a session", func() {
		Expect(execute("show", "sess-1", "--sqlite", dbPath)).To(Succeed())
		Expect(out.String()).To(ContainSubstring(`{"n":0}`))
		Expect(out.String()).To(ContainSubstring(`{"n":1}`))
		Expect(out.String()).To(ContainSubstring("unexpected end of JSON input"))
	})

	It("prints raw payloads in order", func() {
		Expect(execute("show", "sess-1", "--raw", "--sqlite", dbPath)).To(Succeed())
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines).To(Equal([]string{`{"n":0}`, `{"n":1}`, `{"n":`}))
	})

	It("prints records as JSON lines", func() {
		Expect(execute("show", "sess-1", "--json", "--sqlite", dbPath)).To(Succeed())

		dec := json.NewDecoder(out)
		var records []storage.Record
		for dec.More() {
			var r storage.Record
			Expect(dec.Decode(&r)).To(Succeed())
			records = append(records, r)
		}
		Expect(records).To(HaveLen(3))
		Expect(records[2].Kind).To(Equal(storage.KindDecodeError))
	})

	It("rejects --raw together with --json", func() {
		Expect(execute("show", "sess-1", "--raw", "--json", "--sqlite", dbPath)).NotTo(Succeed())
	})

	It("reports unknown sessions", func() {
		err := execute("show", "missing", "--sqlite", dbPath)
		Expect(err).To(MatchError(ContainSubstring(`no recorded session "missing"`)))
	})

	It("reports an empty store", func() {
		Expect(execute("list", "--storage", "inmemory")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No recorded sessions."))
	})
})
