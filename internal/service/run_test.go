package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/pipeline"
	"instaforce.app/engine/internal/queue"
	"instaforce.app/engine/internal/service"
	"instaforce.app/engine/internal/store"
)

var _ = Describe("RunService", func() {
	var (
		ctx      context.Context
		runs     *mockRunStore
		producer *mockProducer
		svc      service.RunService
	)

	BeforeEach(func() {
		ctx = context.Background()
		runs = &mockRunStore{}
		producer = &mockProducer{}
		svc = service.NewRunService(runs, producer, nil)
	})

	Describe("Submit", func() {
		It("creates a pending run and enqueues it", func() {
			run, err := svc.Submit(ctx, "  Add a validation rule on Opportunity  ")

			Expect(err).NotTo(HaveOccurred())
			Expect(run.ID).To(BeNumerically(">", 0))
			Expect(run.Requirement).To(Equal("Add a validation rule on Opportunity"))
			Expect(run.Status).To(Equal(model.RunStatusPending))
			Expect(runs.created).To(ConsistOf(run))
			Expect(producer.messages).To(Equal([]queue.RunMessage{{RunID: run.ID, Attempt: 1}}))
		})

		It("rejects a blank requirement", func() {
			_, err := svc.Submit(ctx, " \n\t")

			Expect(err).To(MatchError(pipeline.ErrEmptyRequirement))
			Expect(runs.created).To(BeEmpty())
			Expect(producer.messages).To(BeEmpty())
		})

		It("does not enqueue when the insert fails", func() {
			runs.createFn = func(context.Context, *model.Run) error { return errors.New("db down") }

			_, err := svc.Submit(ctx, "req")

			Expect(err).To(MatchError(ContainSubstring("creating run")))
			Expect(producer.messages).To(BeEmpty())
		})

		It("marks the run failed when enqueueing fails", func() {
			producer.enqueueFn = func(context.Context, queue.RunMessage) error { return errors.New("redis down") }

			_, err := svc.Submit(ctx, "req")

			Expect(err).To(MatchError(ContainSubstring("enqueueing run")))
			id := runs.created[0].ID
			Expect(runs.finished).To(HaveKeyWithValue(id, model.RunStatusFailed))
			Expect(runs.finishErrs[id]).To(ContainSubstring("redis down"))
		})
	})

	Describe("Get", func() {
		It("passes not found through", func() {
			runs.getFn = func(context.Context, int64) (*model.Run, error) { return nil, store.ErrNotFound }

			_, err := svc.Get(ctx, 9)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("ListRecent", func() {
		It("clamps the limit", func() {
			var got int32
			runs.listRecentFn = func(_ context.Context, limit int32) ([]model.Run, error) {
				got = limit
				return []model.Run{}, nil
			}

			_, err := svc.ListRecent(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(int32(20)))

			_, _ = svc.ListRecent(ctx, 50)
			Expect(got).To(Equal(int32(50)))
		})
	})
})
