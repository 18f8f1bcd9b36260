package generate_excel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"chequeos-rutinas/internal/service/history"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateExcel(ctx context.Context, filter history.Filter) ([]byte, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// Тест: фильтры из query передаются в генератор, ответ — файл xlsx
func TestGenerateReportExcel_Success(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateExcel", mock.Anything, history.Filter{Date: "2024-05-01", Operator: "Ana"}).Return([]byte("PK"), nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/report/excel?date=2024-05-01&operator=Ana", nil)
	GenerateReportExcel(slog.Default(), gen).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "historial-chequeos-")
	assert.Equal(t, "PK", rr.Body.String())
	gen.AssertExpectations(t)
}

// Тест: неверная дата — 400, ошибка генерации — 500
func TestGenerateReportExcel_Errors(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateExcel", mock.Anything, history.Filter{}).Return(nil, errors.New("boom"))

	rr := httptest.NewRecorder()
	GenerateReportExcel(slog.Default(), gen).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report/excel?date=mayo", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	GenerateReportExcel(slog.Default(), gen).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report/excel", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
