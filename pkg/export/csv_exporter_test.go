package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Usuario", "Solicitudes"},
		Rows: []map[string]string{
			{"Usuario": "Ana Morales", "Solicitudes": "3"},
			{"Usuario": "Luis Paz", "Solicitudes": "1"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Usuario,Solicitudes\nAna Morales,3\nLuis Paz,1\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterMissingCellsStayEmpty(t *testing.T) {
	data := Dataset{
		Headers: []string{"Usuario", "Email"},
		Rows:    []map[string]string{{"Usuario": "Ana"}},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Usuario,Email\nAna,\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Usuario", "Solicitudes"},
		Rows:    []map[string]string{{"Usuario": "Ana", "Solicitudes": "3"}},
	}
	out, err := NewPDFExporter().Render(data, "Reporte de vacaciones")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
