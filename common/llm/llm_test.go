package llm_test

import (
	"instaforce.app/engine/common/llm"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

var _ = Describe("New", func() {
	It("requires an API key", func() {
		gw, err := llm.New(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
		Expect(gw).To(BeNil())
	})

	It("rejects unknown providers", func() {
		_, err := llm.New(llm.Config{Provider: "mystery", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	DescribeTable("default models per provider",
		func(provider, model, expected string) {
			gw, err := llm.New(llm.Config{Provider: provider, APIKey: "k", Model: model})
			Expect(err).NotTo(HaveOccurred())
			Expect(gw.Model()).To(Equal(expected))
		},
		Entry("empty provider falls back to openai", "", "", "gpt-4o"),
		Entry("openai default", llm.ProviderOpenAI, "", "gpt-4o"),
		Entry("openai explicit", llm.ProviderOpenAI, "gpt-4o-mini", "gpt-4o-mini"),
		Entry("anthropic default", llm.ProviderAnthropic, "", "claude-sonnet-4-5-20250514"),
	)
})

var _ = Describe("Completion", func() {
	Describe("Text", func() {
		It("returns the text content when present", func() {
			c := &llm.Completion{Content: `{"a":1}`, Raw: map[string]any{"ignored": true}}
			Expect(c.Text()).To(Equal(`{"a":1}`))
		})

		It("renders the raw response when there is no content", func() {
			c := &llm.Completion{Raw: map[string]any{"content": nil, "id": "x"}}
			Expect(c.Text()).To(MatchJSON(`{"content": null, "id": "x"}`))
		})

		It("passes raw strings through", func() {
			c := &llm.Completion{Raw: "plain text"}
			Expect(c.Text()).To(Equal("plain text"))
		})

		It("is empty for a nil completion", func() {
			var c *llm.Completion
			Expect(c.Text()).To(BeEmpty())
		})
	})
})

var _ = Describe("Messages", func() {
	It("builds system and user messages", func() {
		Expect(llm.System("be terse")).To(Equal(llm.Message{Role: "system", Content: "be terse"}))
		Expect(llm.User("hello")).To(Equal(llm.Message{Role: "user", Content: "hello"}))
	})
})

var _ = Describe("SchemaJSON", func() {
	It("describes the struct's json fields", func() {
		schema := llm.SchemaJSON[sample]()
		Expect(schema).To(ContainSubstring(`"name"`))
		Expect(schema).To(ContainSubstring(`"items"`))
		Expect(schema).To(ContainSubstring(`"additionalProperties": false`))
	})
})
