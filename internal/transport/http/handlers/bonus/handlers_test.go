package bonushandler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/bonus"
	"scorecard/internal/transport/http/middleware"
)

type fakeService struct {
	policy    *auth.Policy
	configs   map[int]bonus.Config
	lastBatch bonus.BatchRequest
}

func newFakeService() *fakeService {
	return &fakeService{policy: auth.DefaultPolicy(), configs: map[int]bonus.Config{}}
}

func (f *fakeService) PutConfig(_ context.Context, actor auth.Actor, cfg bonus.Config) (bonus.Config, error) {
	if err := bonus.ValidateConfig(cfg); err != nil {
		return bonus.Config{}, err
	}
	cfg.UpdatedBy = actor.UserID
	f.configs[cfg.Year] = cfg
	return cfg, nil
}

func (f *fakeService) GetConfig(_ context.Context, year int) (*bonus.Config, error) {
	cfg, ok := f.configs[year]
	if !ok {
		return nil, bonus.ErrConfigNotFound
	}
	return &cfg, nil
}

func (f *fakeService) CalculateBatch(_ context.Context, _ auth.Actor, req bonus.BatchRequest) (bonus.BatchResult, error) {
	f.lastBatch = req
	return bonus.BatchResult{Year: req.Year, Count: 3}, nil
}

func (f *fakeService) GetResult(_ context.Context, actor auth.Actor, employeeID string, year int) (*bonus.Result, error) {
	if !f.policy.Can(actor, auth.CapBonusCalculate) && !actor.IsEmployee(employeeID) {
		return nil, bonus.ErrForbidden
	}
	return &bonus.Result{EmployeeID: employeeID, Year: year, Amount: decimal.RequireFromString("15000.00"), Currency: "EUR"}, nil
}

func (f *fakeService) ListResults(context.Context, auth.Actor, int) ([]bonus.Result, error) {
	return []bonus.Result{}, nil
}

func (f *fakeService) Statement(ctx context.Context, actor auth.Actor, employeeID string, year int) ([]byte, error) {
	if _, err := f.GetResult(ctx, actor, employeeID, year); err != nil {
		return nil, err
	}
	return []byte("%PDF-1.3 fake"), nil
}

func serve(svc Service, actor auth.Actor, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(svc, auth.DefaultPolicy(), nil).RegisterRoutes(r)
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var (
	hr       = auth.Actor{UserID: "u-hr", Role: auth.RoleHR}
	employee = auth.Actor{UserID: "u-1", EmployeeID: "emp-1", Role: auth.RoleEmployee}
)

func TestPutConfigTakesYearFromPath(t *testing.T) {
	svc := newFakeService()
	body := `{"scale":{"kind":"linear","threshold":60,"minFraction":0.5,"maxFraction":1.2},"targetMultiple":0.1}`
	rec := serve(svc, hr, http.MethodPut, "/bonus/config/2024", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "u-hr", svc.configs[2024].UpdatedBy)

	rec = serve(svc, hr, http.MethodPut, "/bonus/config/2024", `{"year":2023}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(svc, employee, http.MethodPut, "/bonus/config/2024", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetConfigMissing(t *testing.T) {
	rec := serve(newFakeService(), hr, http.MethodGet, "/bonus/config/2030", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalculateAcceptsEmptyBody(t *testing.T) {
	svc := newFakeService()
	rec := serve(svc, hr, http.MethodPost, "/bonus/2024/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, bonus.BatchRequest{Year: 2024}, svc.lastBatch)

	rec = serve(svc, hr, http.MethodPost, "/bonus/2024/calculate", `{"orgUnitId":"sales"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sales", svc.lastBatch.OrgUnitID)
}

func TestEmployeeReadsOwnResultAndStatement(t *testing.T) {
	svc := newFakeService()
	rec := serve(svc, employee, http.MethodGet, "/bonus/2024/employees/emp-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":"15000"`)

	rec = serve(svc, employee, http.MethodGet, "/bonus/2024/employees/emp-2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(svc, employee, http.MethodGet, "/bonus/2024/employees/emp-1/statement.pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = serve(svc, employee, http.MethodGet, "/bonus/2024/results", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
