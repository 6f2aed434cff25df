package report

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
)

// Export format, parsed from the 'format' query parameter
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case FormatJSON, FormatCSV, FormatExcel, FormatPDF:
		return Format(value), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrExportFormatUnknown, value)
	}
}

// Rendered export file
type Document struct {
	ContentType string
	Filename    string
	Data        []byte
}

const dateLayout = "2006-01-02"

// Render the transactions into the requested format.
// Each format produces a file with its proper signature: xlsx is a zip
// container (PK), pdf starts with %PDF
func Render(format Format, transactions []models.Transaction) (Document, error) {
	switch format {
	case FormatJSON:
		return renderJSON(transactions)
	case FormatCSV:
		return renderCSV(transactions)
	case FormatExcel:
		return renderXLSX(transactions)
	case FormatPDF:
		return renderPDF(transactions)
	default:
		return Document{}, fmt.Errorf("%w: %q", apperrors.ErrExportFormatUnknown, format)
	}
}

func renderJSON(transactions []models.Transaction) (Document, error) {
	type row struct {
		ID          string `json:"id"`
		Date        string `json:"date"`
		Type        string `json:"type"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}

	rows := make([]row, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, row{
			ID:          t.ID.String(),
			Date:        t.Date.Format(dateLayout),
			Type:        t.Type,
			Amount:      t.Amount.StringFixed(2),
			Description: t.Description,
		})
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return Document{}, err
	}

	return Document{
		ContentType: "application/json; charset=utf-8",
		Filename:    "transactions.json",
		Data:        data,
	}, nil
}

func renderCSV(transactions []models.Transaction) (Document, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	records := [][]string{{"id", "date", "type", "amount", "description"}}
	for _, t := range transactions {
		records = append(records, []string{
			t.ID.String(),
			t.Date.Format(dateLayout),
			t.Type,
			t.Amount.StringFixed(2),
			t.Description,
		})
	}

	if err := w.WriteAll(records); err != nil {
		return Document{}, err
	}

	return Document{
		ContentType: "text/csv; charset=utf-8",
		Filename:    "transactions.csv",
		Data:        buf.Bytes(),
	}, nil
}

// Minimal single-sheet xlsx. The format is a zip container with a fixed
// set of xml parts, enough for spreadsheet apps to open the data
func renderXLSX(transactions []models.Transaction) (Document, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", xlsxContentTypes},
		{"_rels/.rels", xlsxRels},
		{"xl/workbook.xml", xlsxWorkbook},
		{"xl/_rels/workbook.xml.rels", xlsxWorkbookRels},
		{"xl/worksheets/sheet1.xml", xlsxSheet(transactions)},
	}

	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return Document{}, err
		}
		if _, err := f.Write([]byte(part.body)); err != nil {
			return Document{}, err
		}
	}

	if err := zw.Close(); err != nil {
		return Document{}, err
	}

	return Document{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Filename:    "transactions.xlsx",
		Data:        buf.Bytes(),
	}, nil
}

const xlsxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
</Types>`

const xlsxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`

const xlsxWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Transactions" sheetId="1" r:id="rId1"/></sheets>
</workbook>`

const xlsxWorkbookRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`

func xlsxSheet(transactions []models.Transaction) string {
	buf := &bytes.Buffer{}
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	buf.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)

	writeRow := func(cells ...string) {
		buf.WriteString("<row>")
		for _, c := range cells {
			buf.WriteString(`<c t="inlineStr"><is><t>`)
			_ = xml.EscapeText(buf, []byte(c))
			buf.WriteString(`</t></is></c>`)
		}
		buf.WriteString("</row>")
	}

	writeRow("date", "type", "amount", "description")
	for _, t := range transactions {
		writeRow(t.Date.Format(dateLayout), t.Type, t.Amount.StringFixed(2), t.Description)
	}

	buf.WriteString(`</sheetData></worksheet>`)
	return buf.String()
}

// Minimal one-page pdf listing the transactions as text lines.
// Assembled by hand: header, four objects, xref table, trailer
func renderPDF(transactions []models.Transaction) (Document, error) {
	content := &bytes.Buffer{}
	content.WriteString("BT /F1 10 Tf 50 780 Td 14 TL\n")
	content.WriteString("(Transactions) Tj T*\n")
	for _, t := range transactions {
		line := fmt.Sprintf("%s  %s  %s  %s",
			t.Date.Format(dateLayout), t.Type, t.Amount.StringFixed(2), pdfEscape(t.Description))
		fmt.Fprintf(content, "(%s) Tj T*\n", line)
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return Document{
		ContentType: "application/pdf",
		Filename:    "transactions.pdf",
		Data:        buf.Bytes(),
	}, nil
}

func pdfEscape(s string) string {
	buf := &bytes.Buffer{}
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		default:
			if r < 128 {
				buf.WriteRune(r)
			}
		}
	}
	return buf.String()
}
