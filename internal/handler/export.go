package handler

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
	"github.com/ekencleng/kencleng-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Printable period report — GET /v1/periods/{periodId}/report/export
// ============================================================

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Laporan Iuran {{.PeriodName}}</title>
<style>
  body { font-family: sans-serif; margin: 2rem; }
  h1 { font-size: 1.3rem; }
  table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
  th, td { border: 1px solid #999; padding: 6px 10px; text-align: left; }
  th { background: #eee; }
  td.amount { text-align: right; }
  .paid { color: #1a7f37; font-weight: bold; }
  .unpaid { color: #b42318; font-weight: bold; }
  footer { margin-top: 2rem; font-size: 0.8rem; color: #666; }
  @media print { footer { display: none; } }
</style>
</head>
<body>
<h1>Laporan Iuran Kencleng — {{.PeriodName}}</h1>
{{if .Notes}}<p>{{.Notes}}</p>{{end}}
<table>
<thead>
<tr><th>No</th><th>Nama Warga</th><th>Tagihan</th><th>Dibayar</th><th>Status</th></tr>
</thead>
<tbody>
{{range $i, $row := .Rows}}
<tr>
  <td>{{$row.Number}}</td>
  <td>{{$row.Name}}</td>
  <td class="amount">{{$row.Due}}</td>
  <td class="amount">{{$row.Paid}}</td>
  <td class="{{$row.StatusClass}}">{{$row.StatusLabel}}</td>
</tr>
{{end}}
</tbody>
</table>
<footer>Dicetak {{.PrintedAt}}</footer>
</body>
</html>
`))

type exportRow struct {
	Number      int
	Name        string
	Due         string
	Paid        string
	StatusClass string
	StatusLabel string
}

type exportData struct {
	PeriodName string
	Notes      string
	Rows       []exportRow
	PrintedAt  string
}

func periodReportExportHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/periods/{periodId}/report/export")
		defer span.End()

		period, rows, err := svc.Report(ctx, chi.URLParam(r, "periodId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		data := exportData{
			PeriodName: domain.MonthName(period.Month) + " " + strconv.Itoa(period.Year),
			Notes:      period.Notes,
			PrintedAt:  time.Now().Format("02-01-2006 15:04"),
		}
		for i, row := range rows {
			er := exportRow{
				Number: i + 1,
				Name:   row.HouseholdName,
				Due:    domain.FormatIDR(row.TotalDue),
				Paid:   domain.FormatIDR(row.TotalPaid),
			}
			if row.Status == domain.StatusPaid {
				er.StatusClass = "paid"
				er.StatusLabel = "LUNAS"
			} else {
				er.StatusClass = "unpaid"
				er.StatusLabel = "BELUM LUNAS"
			}
			data.Rows = append(data.Rows, er)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := reportTemplate.Execute(w, data); err != nil {
			logger.Error("report export: template render failed", zap.Error(err))
		}
	}
}
