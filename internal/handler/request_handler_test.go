package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MappingProcimec/mapping-erp/internal/service"
	"github.com/MappingProcimec/mapping-erp/internal/workflow"
)

// stubWorkflowService lets each test pin the behavior of a single operation;
// everything not configured returns zero values.
type stubWorkflowService struct {
	createFn  func(ctx context.Context, actor service.Actor, req service.CreateRequestInput) (service.RequestResponse, error)
	submitFn  func(ctx context.Context, actor service.Actor, requestID uint) (service.TransitionResponse, error)
	approveFn func(ctx context.Context, actor service.Actor, requestID uint, comment string) (service.TransitionResponse, error)
	rejectFn  func(ctx context.Context, actor service.Actor, requestID uint, comment string) (service.TransitionResponse, error)
	getFn     func(ctx context.Context, requestID uint) (service.RequestDetail, error)
	pendingFn func(ctx context.Context, actor service.Actor, page, limit int) ([]service.RequestResponse, int64, error)
	mineFn    func(ctx context.Context, actor service.Actor, page, limit int) ([]service.RequestResponse, int64, error)
}

func (s *stubWorkflowService) CreateRequest(ctx context.Context, actor service.Actor, req service.CreateRequestInput) (service.RequestResponse, error) {
	if s.createFn != nil {
		return s.createFn(ctx, actor, req)
	}
	return service.RequestResponse{}, nil
}

func (s *stubWorkflowService) Submit(ctx context.Context, actor service.Actor, requestID uint) (service.TransitionResponse, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, actor, requestID)
	}
	return service.TransitionResponse{}, nil
}

func (s *stubWorkflowService) Approve(ctx context.Context, actor service.Actor, requestID uint, comment string) (service.TransitionResponse, error) {
	if s.approveFn != nil {
		return s.approveFn(ctx, actor, requestID, comment)
	}
	return service.TransitionResponse{}, nil
}

func (s *stubWorkflowService) Reject(ctx context.Context, actor service.Actor, requestID uint, comment string) (service.TransitionResponse, error) {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, actor, requestID, comment)
	}
	return service.TransitionResponse{}, nil
}

func (s *stubWorkflowService) GetRequest(ctx context.Context, requestID uint) (service.RequestDetail, error) {
	if s.getFn != nil {
		return s.getFn(ctx, requestID)
	}
	return service.RequestDetail{}, nil
}

func (s *stubWorkflowService) ListPending(ctx context.Context, actor service.Actor, page, limit int) ([]service.RequestResponse, int64, error) {
	if s.pendingFn != nil {
		return s.pendingFn(ctx, actor, page, limit)
	}
	return []service.RequestResponse{}, 0, nil
}

func (s *stubWorkflowService) ListMine(ctx context.Context, actor service.Actor, page, limit int) ([]service.RequestResponse, int64, error) {
	if s.mineFn != nil {
		return s.mineFn(ctx, actor, page, limit)
	}
	return []service.RequestResponse{}, 0, nil
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

const handlerTestSecret = "handler-test-secret"

func newTestRouter(t *testing.T, svc service.WorkflowService) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", handlerTestSecret)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewRequestHandler(svc).RegisterRoutes(router.Group(""))
	return router
}

func mintToken(t *testing.T, userID uuid.UUID, role workflow.Role) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": role.String(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(handlerTestSecret))
	require.NoError(t, err)
	return signed
}

func perform(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env))
	return env
}

func TestRoutesRequireAuthentication(t *testing.T) {
	router := newTestRouter(t, &stubWorkflowService{})

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/requests"},
		{http.MethodGet, "/api/requests/pending"},
		{http.MethodGet, "/api/requests/mine"},
		{http.MethodGet, "/api/requests/1"},
		{http.MethodPut, "/api/requests/1/submit"},
		{http.MethodPut, "/api/requests/1/approve"},
		{http.MethodPut, "/api/requests/1/reject"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			recorder := perform(router, route.method, route.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}

	t.Run("malformed bearer token", func(t *testing.T) {
		recorder := perform(router, http.MethodGet, "/api/requests/mine", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		env := decode(t, recorder)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, "Invalid token", env.Error)
	})
}

func TestCreateRequestPassesActorFromToken(t *testing.T) {
	userID := uuid.New()
	var gotActor service.Actor

	stub := &stubWorkflowService{
		createFn: func(_ context.Context, actor service.Actor, req service.CreateRequestInput) (service.RequestResponse, error) {
			gotActor = actor
			return service.RequestResponse{ID: 7, Title: req.Title, CurrentStage: "DRAFT"}, nil
		},
	}
	router := newTestRouter(t, stub)

	payload := service.CreateRequestInput{
		Title:         "Spare parts",
		Justification: "Conveyor maintenance",
		AreaID:        uuid.NewString(),
		Items: []service.LineItemInput{
			{Description: "Belt", Quantity: "3", UnitPrice: "120000"},
		},
	}
	recorder := perform(router, http.MethodPost, "/api/requests", mintToken(t, userID, workflow.RoleRequester), payload)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, userID, gotActor.ID)
	assert.Equal(t, workflow.RoleRequester, gotActor.Role)

	env := decode(t, recorder)
	assert.Equal(t, "success", env.Status)

	var created service.RequestResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, uint(7), created.ID)
	assert.Equal(t, "Spare parts", created.Title)
}

func TestCreateRequestRejectsBadPayload(t *testing.T) {
	router := newTestRouter(t, &stubWorkflowService{})
	token := mintToken(t, uuid.New(), workflow.RoleRequester)

	// Missing title and items fail binding before the service is reached.
	recorder := perform(router, http.MethodPost, "/api/requests", token, map[string]interface{}{
		"justification": "no title",
		"area_id":       uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPendingQueueRoleGate(t *testing.T) {
	stub := &stubWorkflowService{
		pendingFn: func(_ context.Context, _ service.Actor, page, limit int) ([]service.RequestResponse, int64, error) {
			return []service.RequestResponse{{ID: 3, Title: "Pumps"}}, 1, nil
		},
	}
	router := newTestRouter(t, stub)

	t.Run("requesters are kept off the queue", func(t *testing.T) {
		recorder := perform(router, http.MethodGet, "/api/requests/pending", mintToken(t, uuid.New(), workflow.RoleRequester), nil)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("approvers get their queue", func(t *testing.T) {
		recorder := perform(router, http.MethodGet, "/api/requests/pending", mintToken(t, uuid.New(), workflow.RoleTreasury), nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		env := decode(t, recorder)
		var data struct {
			Requests []service.RequestResponse `json:"requests"`
			Total    int64                     `json:"total"`
			Page     int                       `json:"page"`
			Limit    int                       `json:"limit"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, int64(1), data.Total)
		require.Len(t, data.Requests, 1)
		assert.Equal(t, uint(3), data.Requests[0].ID)
		assert.Equal(t, 1, data.Page)
		assert.Equal(t, 20, data.Limit)
	})
}

func TestDomainErrorsMapToStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", fmt.Errorf("purchase request 9: %w", workflow.ErrNotFound), http.StatusNotFound, "purchase request 9: not found"},
		{"validation", fmt.Errorf("cannot act on request 9 in stage APPROVED: %w", workflow.ErrValidation), http.StatusBadRequest, "cannot act on request 9 in stage APPROVED: validation failed"},
		{"forbidden", fmt.Errorf("role treasury may not act: %w", workflow.ErrForbidden), http.StatusForbidden, "role treasury may not act: forbidden"},
		{"infrastructure failure is not echoed", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubWorkflowService{
				approveFn: func(context.Context, service.Actor, uint, string) (service.TransitionResponse, error) {
					return service.TransitionResponse{}, tc.err
				},
			}
			router := newTestRouter(t, stub)

			recorder := perform(router, http.MethodPut, "/api/requests/9/approve", mintToken(t, uuid.New(), workflow.RoleAreaLead), nil)
			assert.Equal(t, tc.wantStatus, recorder.Code)
			env := decode(t, recorder)
			assert.Equal(t, tc.wantBody, env.Error)
		})
	}
}

func TestRejectWithoutCommentStopsAtTheBoundary(t *testing.T) {
	called := false
	stub := &stubWorkflowService{
		rejectFn: func(context.Context, service.Actor, uint, string) (service.TransitionResponse, error) {
			called = true
			return service.TransitionResponse{}, nil
		},
	}
	router := newTestRouter(t, stub)
	token := mintToken(t, uuid.New(), workflow.RoleExecutive)

	recorder := perform(router, http.MethodPut, "/api/requests/9/reject", token, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = perform(router, http.MethodPut, "/api/requests/9/reject", token, service.DecisionInput{})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, called)

	recorder = perform(router, http.MethodPut, "/api/requests/9/reject", token, service.DecisionInput{Comment: "budget exceeded"})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, called)
}

func TestApproveAcceptsEmptyBody(t *testing.T) {
	var gotComment string
	stub := &stubWorkflowService{
		approveFn: func(_ context.Context, _ service.Actor, _ uint, comment string) (service.TransitionResponse, error) {
			gotComment = comment
			return service.TransitionResponse{RequestID: 9, PreviousStage: "PENDING_AREA_LEAD", NewStage: "APPROVED"}, nil
		},
	}
	router := newTestRouter(t, stub)

	recorder := perform(router, http.MethodPut, "/api/requests/9/approve", mintToken(t, uuid.New(), workflow.RoleAreaLead), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, gotComment)

	env := decode(t, recorder)
	var transition service.TransitionResponse
	require.NoError(t, json.Unmarshal(env.Data, &transition))
	assert.Equal(t, "APPROVED", transition.NewStage)
}

func TestNonNumericRequestID(t *testing.T) {
	router := newTestRouter(t, &stubWorkflowService{})

	recorder := perform(router, http.MethodPut, "/api/requests/abc/submit", mintToken(t, uuid.New(), workflow.RoleRequester), nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	env := decode(t, recorder)
	assert.Equal(t, "Invalid request id", env.Error)
}

func TestSubmitReturnsTransition(t *testing.T) {
	stub := &stubWorkflowService{
		submitFn: func(_ context.Context, _ service.Actor, requestID uint) (service.TransitionResponse, error) {
			return service.TransitionResponse{RequestID: requestID, PreviousStage: "DRAFT", NewStage: "PENDING_AREA_LEAD"}, nil
		},
	}
	router := newTestRouter(t, stub)

	recorder := perform(router, http.MethodPut, "/api/requests/12/submit", mintToken(t, uuid.New(), workflow.RoleRequester), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	env := decode(t, recorder)
	var transition service.TransitionResponse
	require.NoError(t, json.Unmarshal(env.Data, &transition))
	assert.Equal(t, uint(12), transition.RequestID)
	assert.Equal(t, "PENDING_AREA_LEAD", transition.NewStage)
}
