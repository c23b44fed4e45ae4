package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"instaforce.app/engine/internal/http/handler"
	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/pipeline"
	"instaforce.app/engine/internal/store"
)

var _ = Describe("RunHandler", func() {
	var (
		router *gin.Engine
		svc    *mockRunService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockRunService{}
		h := handler.NewRunHandler(svc)
		router.POST("/runs", h.Create)
		router.GET("/runs", h.List)
		router.GET("/runs/:id", h.Get)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	Describe("Create", func() {
		It("returns 202 with the pending run", func() {
			svc.submitFn = func(_ context.Context, requirement string) (*model.Run, error) {
				return &model.Run{ID: 1234567890123456789, Requirement: requirement, Status: model.RunStatusPending}, nil
			}

			w := post(`{"requirement":"Add a validation rule"}`)

			Expect(w.Code).To(Equal(http.StatusAccepted))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["id"]).To(Equal("1234567890123456789"))
			Expect(resp["status"]).To(Equal("pending"))
			Expect(resp).NotTo(HaveKey("state"))
		})

		It("returns 400 when the requirement is missing", func() {
			w := post(`{}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 on a malformed body", func() {
			w := post(`{`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 for a whitespace requirement", func() {
			svc.submitFn = func(context.Context, string) (*model.Run, error) {
				return nil, pipeline.ErrEmptyRequirement
			}

			w := post(`{"requirement":"   "}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when submission fails", func() {
			svc.submitFn = func(context.Context, string) (*model.Run, error) {
				return nil, errors.New("redis down")
			}

			w := post(`{"requirement":"x"}`)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"failed to submit run"}`))
		})
	})

	Describe("Get", func() {
		It("returns the run with its state", func() {
			svc.getFn = func(_ context.Context, id int64) (*model.Run, error) {
				state := model.NewState("42", "req")
				return &model.Run{ID: id, Status: model.RunStatusFailed, State: state}, nil
			}

			w := get("/runs/42")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["id"]).To(Equal("42"))
			Expect(resp["state"]).To(HaveKeyWithValue("requirement", "req"))
		})

		It("returns 404 for an unknown run", func() {
			svc.getFn = func(context.Context, int64) (*model.Run, error) { return nil, store.ErrNotFound }

			Expect(get("/runs/42").Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a malformed id", func() {
			Expect(get("/runs/abc").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("List", func() {
		It("passes the limit through", func() {
			var got int32
			svc.listRecentFn = func(_ context.Context, limit int32) ([]model.Run, error) {
				got = limit
				return []model.Run{{ID: 1}, {ID: 2}}, nil
			}

			w := get("/runs?limit=5")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(Equal(int32(5)))
			var resp map[string][]map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["runs"]).To(HaveLen(2))
		})

		It("rejects a non-numeric limit", func() {
			Expect(get("/runs?limit=x").Code).To(Equal(http.StatusBadRequest))
		})
	})
})
