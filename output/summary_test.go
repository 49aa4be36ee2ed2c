package output

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"goplot/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable(t *testing.T) *importer.Table {
	t.Helper()
	table, err := importer.ParseText([]byte("city,temp\nOslo,1\nRome,4\nOslo,2\nLima,\nOslo,3\n"), importer.HeaderAuto, nil)
	require.NoError(t, err)
	table.Source = "weather.csv"
	return table
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	summary, err := Describe(sampleTable(t), 2)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Rows)
	assert.Equal(t, 2, summary.Columns)
	assert.Equal(t, []string{"city", "temp"}, summary.Names)
	assert.Equal(t, [][]string{{"Oslo", "1"}, {"Rome", "4"}}, summary.Head)
	require.Len(t, summary.Stats, 2)

	city := summary.Stats[0]
	assert.Equal(t, importer.Categorical, city.Type)
	assert.Equal(t, 5, city.Count)
	assert.Equal(t, 3, city.Unique)
	assert.Equal(t, "Oslo", city.Top)
	assert.Equal(t, 3, city.Freq)
	assert.True(t, math.IsNaN(city.Mean))

	temp := summary.Stats[1]
	assert.Equal(t, importer.Numeric, temp.Type)
	assert.Equal(t, 4, temp.Count)
	assert.InDelta(t, 2.5, temp.Mean, 1e-9)
	assert.InDelta(t, 1.2909944, temp.Std, 1e-6)
	assert.Equal(t, 1.0, temp.Min)
	assert.Equal(t, 4.0, temp.Max)
	assert.InDelta(t, 2.5, temp.Median, 1e-9)
	assert.Equal(t, 1.0, temp.Q25)
	assert.Equal(t, 3.0, temp.Q75)
}

func TestDescribe_SingleValueHasNoStd(t *testing.T) {
	t.Parallel()

	table, err := importer.ParseText([]byte("v\n7\n"), importer.HeaderPresent, nil)
	require.NoError(t, err)

	summary, err := Describe(table, 5)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(summary.Stats[0].Std))
	assert.Equal(t, 7.0, summary.Stats[0].Median)
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	summary, err := Describe(sampleTable(t), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summary))

	text := buf.String()
	assert.Contains(t, text, "Rows:")
	assert.Contains(t, text, "Column names:  city, temp")
	assert.Contains(t, text, "First 1 rows:")
	assert.Contains(t, text, "Statistics:")
	assert.Contains(t, text, "categorical")
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	summary, err := Describe(sampleTable(t), 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "stats.csv")
	writer, err := WriterForFormat(DetectFormat(path))
	require.NoError(t, err)
	require.NoError(t, writer.Write(path, summary))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, statsHeader(), rows[0])
	assert.Equal(t, "temp", rows[2][0])
	assert.Equal(t, "2.5", rows[2][3])
}

func TestExcelWriter(t *testing.T) {
	t.Parallel()

	summary, err := Describe(sampleTable(t), 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "stats.xlsx")
	require.Equal(t, "excel", DetectFormat(path))
	writer, err := WriterForFormat("excel")
	require.NoError(t, err)
	require.NoError(t, writer.Write(path, summary))

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer file.Close()

	statsRows, err := file.GetRows("Statistics")
	require.NoError(t, err)
	require.Len(t, statsRows, 3)
	assert.Equal(t, "city", statsRows[1][0])

	headRows, err := file.GetRows("Head")
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "temp"}, headRows[0])
}

func TestWriterForFormat_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := WriterForFormat("parquet")
	require.Error(t, err)
}
