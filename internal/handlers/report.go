package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/handlers/render"
	"github.com/centavo-app/centavo/internal/handlers/userctx"
	"github.com/centavo-app/centavo/internal/logger"
	"github.com/centavo-app/centavo/internal/service/report"
)

func handleDashboard(reportService reportService, l logger.Logger) http.Handler {
	type categoryAmount struct {
		CategoryID   *uuid.UUID `json:"categoryId"`
		CategoryName string     `json:"categoryName"`
		Amount       float64    `json:"amount"`
	}
	type response struct {
		Income     float64               `json:"income"`
		Expense    float64               `json:"expense"`
		Balance    float64               `json:"balance"`
		ByCategory []categoryAmount      `json:"byCategory"`
		Recent     []transactionResponse `json:"recentTransactions"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		q := r.URL.Query()
		now := time.Now()
		month, err := queryInt(q.Get("month"), 1, 12)
		if err != nil {
			render.ServiceError(w, "month must be a number between 1 and 12", http.StatusBadRequest)
			return
		}
		year, err := queryInt(q.Get("year"), 1970, 9999)
		if err != nil {
			render.ServiceError(w, "year must be a valid year", http.StatusBadRequest)
			return
		}
		if month == 0 {
			month = int(now.Month())
		}
		if year == 0 {
			year = now.Year()
		}

		d, err := reportService.Dashboard(r.Context(), user.ID, month, year)
		if err != nil {
			l.Error("Failed to build dashboard", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		income, _ := d.Income.Float64()
		expense, _ := d.Expense.Float64()
		balance, _ := d.Balance.Float64()

		byCategory := make([]categoryAmount, 0, len(d.ByCategory))
		for _, c := range d.ByCategory {
			amount, _ := c.Amount.Float64()
			byCategory = append(byCategory, categoryAmount{
				CategoryID:   c.CategoryID,
				CategoryName: c.CategoryName,
				Amount:       amount,
			})
		}

		recent := make([]transactionResponse, 0, len(d.Recent))
		for _, tr := range d.Recent {
			recent = append(recent, toTransactionResponse(tr))
		}

		render.JSON(w, response{
			Income:     income,
			Expense:    expense,
			Balance:    balance,
			ByCategory: byCategory,
			Recent:     recent,
		})
	})
}

func handleChart(reportService reportService, l logger.Logger) http.Handler {
	type monthAmount struct {
		Month   int     `json:"month"`
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		year, err := queryInt(r.URL.Query().Get("year"), 1970, 9999)
		if err != nil {
			render.ServiceError(w, "year must be a valid year", http.StatusBadRequest)
			return
		}
		if year == 0 {
			year = time.Now().Year()
		}

		series, err := reportService.Chart(r.Context(), user.ID, year)
		if err != nil {
			l.Error("Failed to build chart", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		months := make([]monthAmount, 0, len(series))
		for _, m := range series {
			income, _ := m.Income.Float64()
			expense, _ := m.Expense.Float64()
			months = append(months, monthAmount{Month: m.Month, Income: income, Expense: expense})
		}
		render.JSON(w, months)
	})
}

func handleExport(reportService reportService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		format, err := report.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			render.ServiceError(w, "format must be one of: json, csv, excel, pdf", http.StatusBadRequest)
			return
		}

		doc, err := reportService.Export(r.Context(), user.ID, format)

		switch {
		case err == nil:
			w.Header().Set("Content-Type", doc.ContentType)
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(doc.Data)
		case errors.Is(err, apperrors.ErrExportFormatUnknown):
			render.ServiceError(w, "format must be one of: json, csv, excel, pdf", http.StatusBadRequest)
		default:
			l.Error("Failed to export transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
