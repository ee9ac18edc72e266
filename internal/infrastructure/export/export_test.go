package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBucket(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	assert.Equal(t, 0, Bucket(now.Add(5*day), now))
	assert.Equal(t, 0, Bucket(now, now))
	assert.Equal(t, 1, Bucket(now.Add(-day), now))
	assert.Equal(t, 2, Bucket(now.Add(-45*day), now))
	assert.Equal(t, 3, Bucket(now.Add(-90*day), now))
	assert.Equal(t, 4, Bucket(now.Add(-200*day), now))
}

func TestReceivablesAging(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	open := entity.NewReceivable(uuid.New(), uuid.New(), nil, "Licencia", decimal.NewFromInt(900), now.AddDate(0, 0, -40))
	open.Client = &entity.Client{CompanyName: "ACME"}
	open.Recalculate(decimal.NewFromInt(450))
	paid := entity.NewReceivable(uuid.New(), uuid.New(), nil, "Pagada", decimal.NewFromInt(100), now)
	paid.Recalculate(decimal.NewFromInt(100))

	out, err := ReceivablesAging([]entity.Receivable{*open, *paid}, now)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(agingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3) // header, one open row, totals
	assert.Equal(t, "ACME", rows[1][0])
	assert.Equal(t, "450", rows[1][8]) // 31-60 bucket
	assert.Equal(t, "Total", rows[2][0])
}

func TestClients(t *testing.T) {
	out, err := Clients([]entity.Client{{CompanyName: "ACME", RFC: "XAXX010101000"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(clientSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "XAXX010101000", rows[1][4])
}
