package btd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "taiex.csv")
	require.NoError(t, os.WriteFile(data, []byte("日期,收盤\n113/01/02,17853.76\n113/01/03,x\n113/01/04,17700\n"), 0o644))
	params := filepath.Join(dir, "bt.yaml")
	require.NoError(t, os.WriteFile(params, []byte("strategy:\n  params:\n    x: 2\n"), 0o644))

	d, err := Setup(Options{
		ConfigPath: filepath.Join(dir, "missing-config.yaml"),
		Port:       18080,
		DataPath:   data,
		ParamsPath: params,
	})
	require.NoError(t, err)
	assert.Equal(t, 18080, d.Config.Port)
	assert.Equal(t, 2, d.Cache.Series().Len())
	server := d.Server

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prices", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
	assert.Contains(t, w.Body.String(), `"skipped":1`)

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/params/default", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"x":2`)

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "<html"))
}

func TestSetupMissingData(t *testing.T) {
	_, err := Setup(Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing-config.yaml"),
		DataPath:   filepath.Join(t.TempDir(), "none.csv"),
	})
	assert.Error(t, err)
}
