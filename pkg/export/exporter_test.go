package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDataset() Dataset {
	return Dataset{
		Headers: []string{"member_id", "member_name", "status"},
		Rows: []map[string]string{
			{"member_id": "member-1", "member_name": "Ada, Lovelace", "status": "PRESENT"},
			{"member_id": "member-2", "status": "UNMARKED"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	body, err := NewCSVExporter().Render(rosterDataset())
	require.NoError(t, err)
	assert.Equal(t, "member_id,member_name,status\nmember-1,\"Ada, Lovelace\",PRESENT\nmember-2,,UNMARKED\n", string(body))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := &PDFExporter{now: func() time.Time { return time.Date(2024, 1, 8, 20, 0, 0, 0, time.UTC) }}
	body, err := exporter.Render(rosterDataset(), "Class class-1 session 3")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	_, err = exporter.Render(Dataset{}, "")
	assert.Error(t, err)
}
