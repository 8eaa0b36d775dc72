package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVisitLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visits.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadVisitLog(t *testing.T) {
	path := writeVisitLog(t, "park_name,visit_date\nAcadia,2023-08-15\nYellowstone,2021-06-02\n")

	records, err := LoadVisitLog(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, VisitRecord{ParkName: "Acadia", VisitDate: "2023-08-15"}, records[0])
}

func TestLoadVisitLogSkipsIncompleteRows(t *testing.T) {
	path := writeVisitLog(t, "park_name,visit_date\nAcadia,\n,2020-01-01\nZion,2022-05-10\n")

	records, err := LoadVisitLog(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Zion", records[0].ParkName)
}

func TestLoadVisitLogColumnOrder(t *testing.T) {
	// Extra columns and a different order are fine, the header decides
	path := writeVisitLog(t, "notes,visit_date,park_name\nsunny,2023-08-15,Acadia\n")

	records, err := LoadVisitLog(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acadia", records[0].ParkName)
	assert.Equal(t, "2023-08-15", records[0].VisitDate)
}

func TestLoadVisitLogMissingColumns(t *testing.T) {
	path := writeVisitLog(t, "park,notes\nAcadia,sunny\n")

	_, err := LoadVisitLog(path)
	assert.Error(t, err)
}

func TestLoadVisitLogMissingFile(t *testing.T) {
	_, err := LoadVisitLog(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
