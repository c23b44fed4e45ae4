package queue

import (
	"github.com/redis/go-redis/v9"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseMessage", func() {
	It("parses string values as delivered by redis", func() {
		msg, err := ParseMessage(redis.XMessage{
			ID:     "1-0",
			Values: map[string]any{"run_id": "42", "attempt": "2", "trace_id": "abc"},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1-0"))
		Expect(msg.RunID).To(Equal(int64(42)))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.TraceID).To(Equal("abc"))
	})

	It("defaults the attempt to one", func() {
		msg, err := ParseMessage(redis.XMessage{Values: map[string]any{"run_id": "42"}})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
		Expect(msg.TraceID).To(BeEmpty())
	})

	It("requires a run id", func() {
		_, err := ParseMessage(redis.XMessage{Values: map[string]any{"attempt": "1"}})
		Expect(err).To(MatchError("missing run_id"))
	})

	It("rejects a non-numeric run id", func() {
		_, err := ParseMessage(redis.XMessage{Values: map[string]any{"run_id": "abc"}})
		Expect(err).To(MatchError(ContainSubstring("parsing run_id")))
	})

	It("rejects a non-numeric attempt", func() {
		_, err := ParseMessage(redis.XMessage{Values: map[string]any{"run_id": "1", "attempt": "x"}})
		Expect(err).To(MatchError(ContainSubstring("parsing attempt")))
	})
})

var _ = Describe("messageValues", func() {
	It("carries the trace id only when set", func() {
		Expect(messageValues(Message{RunID: 5, Attempt: 1})).To(Equal(map[string]any{
			"run_id": int64(5), "attempt": 1,
		}))
		Expect(messageValues(Message{RunID: 5, Attempt: 1, TraceID: "t"})).To(HaveKeyWithValue("trace_id", "t"))
	})
})
