package pipeline_test

import (
	"bytes"

	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/pipeline"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Export", func() {
	var state *model.State

	BeforeEach(func() {
		state = model.NewState("99", requirement)
		Expect(state.Apply(model.BreakdownUpdate(model.EmptyBreakdown()))).To(Succeed())
		Expect(state.Apply(model.FilesUpdate([]model.GeneratedFile{{
			FileName: "A.cls",
			FilePath: "force-app/main/default/classes",
			Content:  "public class A {\n}\n",
		}}))).To(Succeed())
	})

	It("round trips JSON", func() {
		var buf bytes.Buffer
		Expect(pipeline.Export(&buf, state, pipeline.FormatJSON)).To(Succeed())

		restored, err := pipeline.Import(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(restored.RunID).To(Equal("99"))
		Expect(restored.Files).To(Equal(state.Files))
		Expect(restored.Has(model.KeyComponents)).To(BeFalse())
	})

	It("writes block style YAML with the JSON key names", func() {
		var buf bytes.Buffer
		Expect(pipeline.Export(&buf, state, pipeline.FormatYAML)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("requirement: " + requirement))
		Expect(out).To(ContainSubstring("fileName: A.cls"))
		Expect(out).To(MatchRegexp(`runId: ["']99["']`))
		Expect(out).To(ContainSubstring("content: |"))
		Expect(out).NotTo(ContainSubstring(`"fileName"`))
	})

	DescribeTable("ParseFormat",
		func(in string, expected pipeline.Format, ok bool) {
			f, err := pipeline.ParseFormat(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(expected))
		},
		Entry("default", "", pipeline.FormatJSON, true),
		Entry("json", "json", pipeline.FormatJSON, true),
		Entry("yaml", "yaml", pipeline.FormatYAML, true),
		Entry("yml", "yml", pipeline.FormatYAML, true),
		Entry("xml", "xml", pipeline.Format(""), false),
	)
})
