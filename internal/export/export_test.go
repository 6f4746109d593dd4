package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCSV(t *testing.T) {
	table := Table{
		Headers: []string{"Name", "Creation date"},
		Rows: [][]string{
			{"Tax Advisory", "01/15/2025"},
			{"Audit, LLC", "02/01/2025"},
		},
	}

	data, err := Convert(FileTypeCSV, table)
	require.NoError(t, err)

	want := "Name,Creation date\nTax Advisory,01/15/2025\n\"Audit, LLC\",02/01/2025\n"
	assert.Equal(t, want, string(data))
}

func TestConvertEmptyTable(t *testing.T) {
	data, err := Convert(FileTypeCSV, Table{Headers: []string{"Name"}})
	require.NoError(t, err)
	assert.Equal(t, "Name\n", string(data))
}

func TestConvertUnsupportedFileType(t *testing.T) {
	_, err := Convert(FileType("xlsx"), Table{Headers: []string{"Name"}})
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}
