package fetcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

func TestParseCSVSortsAndSkips(t *testing.T) {
	in := "date,close\n" +
		"2024-01-03,17800.5\n" +
		"2024-01-02,\"17,853.76\"\n" +
		"not-a-date,100\n" +
		"2024-01-04,NaN\n" +
		"2024-01-05,abc\n" +
		"2024-01-08,-1\n" +
		"2024-01-09,17600\n"

	res, err := ParseCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Rows)
	assert.Equal(t, 4, res.Skipped)
	require.Equal(t, 3, res.Series.Len())
	assert.Equal(t, []float64{17853.76, 17800.5, 17600}, res.Series.Closes())
	assert.Equal(t, "2024-01-02", res.Series.At(0).DateString())
}

func TestParseCSVChineseHeaderBig5(t *testing.T) {
	src := "交易日期,開盤,收盤\n113/01/02,17900,\"17,853.76\"\n113/01/03,17800,17689.00\n"
	encoded, _, err := transform.String(traditionalchinese.Big5.NewEncoder(), src)
	require.NoError(t, err)

	res, err := ParseCSV(strings.NewReader(encoded), CSVOptions{Encoding: "big5"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Series.Len())
	assert.Equal(t, "2024-01-02", res.Series.At(0).DateString())
	assert.Equal(t, 17689.0, res.Series.At(1).Close)
}

func TestParseCSVBOMAndExplicitColumns(t *testing.T) {
	in := "\ufeffDay,Price,taiex_close\n2024/01/02,1,100\n20240103,2,101\n"

	res, err := ParseCSV(strings.NewReader(in), CSVOptions{DateColumn: "day", CloseColumn: "Price"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, res.Series.Closes())

	res, err = ParseCSV(strings.NewReader(in), CSVOptions{DateColumn: "Day"})
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 101}, res.Series.Closes())
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), CSVOptions{})
	assert.True(t, errors.Is(err, ErrEmptyCSV), "got %v", err)

	_, err = ParseCSV(strings.NewReader("when,close\n"), CSVOptions{})
	assert.True(t, errors.Is(err, ErrMissingColumn), "got %v", err)

	_, err = ParseCSV(strings.NewReader("date,price\n"), CSVOptions{})
	assert.True(t, errors.Is(err, ErrMissingColumn), "got %v", err)

	_, err = ParseCSV(strings.NewReader("date,close\n"), CSVOptions{Encoding: "latin9"})
	assert.True(t, errors.Is(err, ErrUnknownEncoding), "got %v", err)
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-01-02", "2024/01/02", "20240102", "113/01/02", "113/1/2", " 2024-1-2 "} {
		d, ok := ParseDate(s)
		require.True(t, ok, s)
		assert.Equal(t, "2024-01-02", d.Format("2006-01-02"), s)
	}
	for _, s := range []string{"", "2024-13-01", "113/02/30", "yesterday"} {
		_, ok := ParseDate(s)
		assert.False(t, ok, s)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taiex.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,close\n2024-01-02,100\n"), 0o644))

	res, err := LoadCSV(path, CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Series.Len())

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), CSVOptions{})
	assert.Error(t, err)
}
