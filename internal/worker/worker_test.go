package worker_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/pipeline"
	"instaforce.app/engine/internal/queue"
	"instaforce.app/engine/internal/store"
	"instaforce.app/engine/internal/worker"
)

var _ = Describe("Worker", func() {
	var (
		ctx      context.Context
		consumer *mockConsumer
		runs     *mockRunStore
		runner   *mockRunner
		w        *worker.Worker
		msg      queue.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &mockConsumer{}
		runs = &mockRunStore{}
		runner = &mockRunner{}
		w = worker.New(consumer, runs, runner)
		msg = queue.Message{ID: "1-0", RunID: 42, Attempt: 1}
	})

	Describe("ProcessMessage", func() {
		It("runs the pipeline and records success", func() {
			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())

			Expect(runs.running).To(Equal([]int64{42}))
			Expect(runner.requests).To(Equal([]pipeline.Request{{RunID: "42", Requirement: "req"}}))
			Expect(runs.finished).To(HaveLen(1))
			Expect(runs.finished[0].status).To(Equal(model.RunStatusSucceeded))
			Expect(runs.finished[0].errMsg).To(BeNil())
			Expect(runs.finished[0].state.DeployStatus.Success).To(BeTrue())
			Expect(consumer.acked).To(HaveLen(1))
		})

		It("records a failed deployment as deploy_failed and still acks", func() {
			runner.runFn = func(_ context.Context, req pipeline.Request) (*model.State, error) {
				return deployedState(req, false), nil
			}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())

			Expect(runs.finished[0].status).To(Equal(model.RunStatusDeployFailed))
			Expect(*runs.finished[0].errMsg).To(Equal(model.DeployMessageFailure))
			Expect(consumer.acked).To(HaveLen(1))
		})

		It("persists the partial state when a stage fails", func() {
			partial := model.NewState("42", "req")
			stageErr := &pipeline.StageError{Stage: "design", Err: errors.New("model call: timeout")}
			runner.runFn = func(context.Context, pipeline.Request) (*model.State, error) {
				return partial, stageErr
			}

			err := w.ProcessMessage(ctx, msg)

			Expect(err).To(MatchError(stageErr))
			Expect(runs.finished).To(HaveLen(1))
			Expect(runs.finished[0].status).To(Equal(model.RunStatusFailed))
			Expect(runs.finished[0].state).To(BeIdenticalTo(partial))
			Expect(*runs.finished[0].errMsg).To(Equal("stage design: model call: timeout"))
			Expect(consumer.acked).To(BeEmpty())
		})

		It("drops messages for unknown runs", func() {
			runs.getFn = func(context.Context, int64) (*model.Run, error) {
				return nil, store.ErrNotFound
			}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())
			Expect(runner.requests).To(BeEmpty())
			Expect(consumer.acked).To(HaveLen(1))
		})

		It("skips runs that already left pending", func() {
			runs.getFn = func(_ context.Context, id int64) (*model.Run, error) {
				return &model.Run{ID: id, Status: model.RunStatusSucceeded}, nil
			}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())
			Expect(runs.running).To(BeEmpty())
			Expect(consumer.acked).To(HaveLen(1))
		})

		It("returns store errors without acking", func() {
			runs.getFn = func(context.Context, int64) (*model.Run, error) {
				return nil, errors.New("connection refused")
			}

			Expect(w.ProcessMessage(ctx, msg)).To(MatchError(ContainSubstring("loading run")))
			Expect(consumer.acked).To(BeEmpty())
		})
	})

	Describe("Run", func() {
		readOnce := func(cancel context.CancelFunc, msgs ...queue.Message) func(context.Context) ([]queue.Message, error) {
			calls := 0
			return func(context.Context) ([]queue.Message, error) {
				calls++
				if calls == 1 {
					return msgs, nil
				}
				cancel()
				return nil, nil
			}
		}

		It("sends failed runs to the DLQ", func() {
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			consumer.readFn = readOnce(cancel, msg)
			runner.runFn = func(context.Context, pipeline.Request) (*model.State, error) {
				return nil, &pipeline.StageError{Stage: "codegen", Err: errors.New("boom")}
			}

			Expect(w.Run(runCtx)).To(MatchError(context.Canceled))

			Expect(consumer.dlq).To(Equal([]queue.Message{msg}))
			Expect(consumer.dlqErrors).To(Equal([]string{"stage codegen: boom"}))
		})

		It("recovers from a panicking pipeline", func() {
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			consumer.readFn = readOnce(cancel, msg)
			runner.runFn = func(context.Context, pipeline.Request) (*model.State, error) {
				panic("nil map")
			}

			Expect(w.Run(runCtx)).To(MatchError(context.Canceled))

			Expect(consumer.dlqErrors).To(Equal([]string{"panic: nil map"}))
			Expect(runs.finished).To(HaveLen(1))
			Expect(runs.finished[0].status).To(Equal(model.RunStatusFailed))
		})

		It("returns nil after Stop", func() {
			done := make(chan error, 1)
			consumer.readFn = func(context.Context) ([]queue.Message, error) { return nil, nil }

			go func() { done <- w.Run(ctx) }()
			w.Stop()

			Eventually(done).Should(Receive(BeNil()))
		})
	})
})

var _ = Describe("Worker claim race", func() {
	It("acks without running when another worker claimed the run", func() {
		consumer := &mockConsumer{}
		runs := &mockRunStore{markRunningFn: func(context.Context, int64) error { return store.ErrNotFound }}
		runner := &mockRunner{}
		w := worker.New(consumer, runs, runner)

		Expect(w.ProcessMessage(context.Background(), queue.Message{ID: "1-0", RunID: 7})).To(Succeed())

		Expect(runner.requests).To(BeEmpty())
		Expect(runs.finished).To(BeEmpty())
		Expect(consumer.acked).To(HaveLen(1))
	})
})
