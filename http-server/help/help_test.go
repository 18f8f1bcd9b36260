package help

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHelpProvider struct {
	mock.Mock
}

func (m *MockHelpProvider) HelpText() string {
	return m.Called().String(0)
}

func (m *MockHelpProvider) SetHelpText(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// Тест: справка читается и сохраняется
func TestHelp_GetAndSave(t *testing.T) {
	provider := new(MockHelpProvider)
	provider.On("HelpText").Return("reiniciar")
	provider.On("SetHelpText", mock.Anything, "llamar al 555").Return("llamar al 555", nil)

	rr := httptest.NewRecorder()
	GetHelp(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/help", nil))
	var got Help
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &got))
	assert.Equal(t, "reiniciar", got.Text)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/help", strings.NewReader(`{"text":"llamar al 555"}`))
	SaveHelp(slog.Default(), provider).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &got))
	assert.Equal(t, "llamar al 555", got.Text)

	provider.AssertExpectations(t)
}

// Тест: ошибка хранилища — 500
func TestSaveHelp_Error(t *testing.T) {
	provider := new(MockHelpProvider)
	provider.On("SetHelpText", mock.Anything, "x").Return("", errors.New("disk"))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/help", strings.NewReader(`{"text":"x"}`))
	SaveHelp(slog.Default(), provider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
