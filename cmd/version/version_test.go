package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/genai/cmd/version"
	"github.com/papercomputeco/genai/pkg/utils"
)

var _ = Describe("NewVersionCmd", func() {
	It("prints the build information", func() {
		var out bytes.Buffer
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version: " + utils.Version))
		Expect(out.String()).To(ContainSubstring("Sha: " + utils.Sha))
		Expect(out.String()).To(ContainSubstring("Built at: " + utils.Buildtime))
	})

	It("rejects arguments", func() {
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"extra"})
		Expect(cmd.Execute()).NotTo(Succeed())
	})
})
