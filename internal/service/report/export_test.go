package report

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
)

func Test_ParseFormat(t *testing.T) {
	t.Run("known formats", func(t *testing.T) {
		for _, value := range []string{"json", "csv", "excel", "pdf"} {
			format, err := ParseFormat(value)

			require.NoError(t, err)
			assert.EqualValues(t, value, format)
		}
	})

	t.Run("empty means json", func(t *testing.T) {
		format, err := ParseFormat("")

		require.NoError(t, err)
		assert.Equal(t, FormatJSON, format)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := ParseFormat("xml")

		assert.ErrorIs(t, err, apperrors.ErrExportFormatUnknown)
	})
}

func Test_Render(t *testing.T) {
	date, err := time.Parse("2006-01-02", "2025-06-15")
	require.NoError(t, err)

	transactions := []models.Transaction{
		{
			ID:          uuid.New(),
			Type:        models.TransactionTypeIncome,
			Amount:      decimal.RequireFromString("1000"),
			Description: "salary",
			Date:        date,
		},
		{
			ID:          uuid.New(),
			Type:        models.TransactionTypeExpense,
			Amount:      decimal.RequireFromString("42.50"),
			Description: "lunch, again",
			Date:        date,
		},
	}

	t.Run("json", func(t *testing.T) {
		doc, err := Render(FormatJSON, transactions)

		require.NoError(t, err)
		assert.Equal(t, "application/json; charset=utf-8", doc.ContentType)
		assert.Equal(t, "transactions.json", doc.Filename)

		var rows []map[string]string
		require.NoError(t, json.Unmarshal(doc.Data, &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "1000.00", rows[0]["amount"])
		assert.Equal(t, "2025-06-15", rows[0]["date"])
	})

	t.Run("csv", func(t *testing.T) {
		doc, err := Render(FormatCSV, transactions)

		require.NoError(t, err)
		assert.Equal(t, "text/csv; charset=utf-8", doc.ContentType)
		assert.Equal(t, "transactions.csv", doc.Filename)

		records, err := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3, "header plus two rows")
		assert.Equal(t, "lunch, again", records[2][4], "comma in description must survive")
	})

	t.Run("excel is a zip container", func(t *testing.T) {
		doc, err := Render(FormatExcel, transactions)

		require.NoError(t, err)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", doc.ContentType)
		assert.Equal(t, "transactions.xlsx", doc.Filename)
		assert.True(t, bytes.HasPrefix(doc.Data, []byte("PK")), "xlsx starts with zip signature")

		r, err := zip.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
		require.NoError(t, err)

		names := make([]string, 0, len(r.File))
		for _, f := range r.File {
			names = append(names, f.Name)
		}
		assert.Contains(t, names, "[Content_Types].xml")
		assert.Contains(t, names, "xl/workbook.xml")
		assert.Contains(t, names, "xl/worksheets/sheet1.xml")
	})

	t.Run("pdf has pdf signature", func(t *testing.T) {
		doc, err := Render(FormatPDF, transactions)

		require.NoError(t, err)
		assert.Equal(t, "application/pdf", doc.ContentType)
		assert.Equal(t, "transactions.pdf", doc.Filename)
		assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")), "pdf starts with its signature")
		assert.Contains(t, string(doc.Data), "%%EOF")
	})

	t.Run("empty export still renders", func(t *testing.T) {
		for _, format := range []Format{FormatJSON, FormatCSV, FormatExcel, FormatPDF} {
			doc, err := Render(format, nil)

			require.NoError(t, err)
			assert.NotEmpty(t, doc.Data)
		}
	})
}
