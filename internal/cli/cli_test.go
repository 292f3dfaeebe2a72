package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-rsvp/internal/followup"
	"wedding-rsvp/internal/models"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestGuestsAndFollowups(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WHATSAPP_DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DEFAULT_COUNTRY_CODE", "503")

	csvPath := filepath.Join(dir, "guests.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Juan Pérez,+503 7000 0001,2\nMaría García,+503 7000 0002,3\n"), 0o644))

	assert.Contains(t, run(t, "guests", "import", csvPath), "Imported 2 guests")

	var guests []models.Guest
	require.NoError(t, json.Unmarshal([]byte(run(t, "guests", "list", "-o", "json")), &guests))
	require.Len(t, guests, 2)
	assert.Equal(t, 3, guests[1].SeatCount)

	var links []followup.Link
	require.NoError(t, json.Unmarshal([]byte(run(t, "followups", "links", "--mode", "initial", "-o", "json")), &links))
	require.Len(t, links, 2)
	assert.Equal(t, "50370000001", links[0].CleanPhone)

	// Nobody has been invited yet, so nobody needs a reminder
	var pending []models.Guest
	require.NoError(t, json.Unmarshal([]byte(run(t, "followups", "list", "-o", "json")), &pending))
	assert.Empty(t, pending)

	exportPath := filepath.Join(dir, "export.json")
	run(t, "guests", "export", exportPath)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "María García")
}

func TestBackupRequiresBucket(t *testing.T) {
	t.Setenv("WHATSAPP_DATA_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"backup"})
	assert.ErrorContains(t, cmd.Execute(), "BACKUP_BUCKET")
}
