package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/printquote/internal/domain"
)

const quotesSheet = "Cotizaciones"

var quoteHeader = []string{
	"id", "uploaded_model_id", "created_at", "expire_at",
	"material", "quality", "infill_pct",
	"volume_cm3", "weight_g", "print_time_h", "complexity",
	"material_cost", "time_cost", "total_cost",
	"quality_multiplier", "infill_multiplier", "hourly_rate",
	"warnings",
}

// WriteQuotes writes one row per quote into a new workbook. The breakdown factors are
// included so that a quote can be audited after the configuration changed.
func WriteQuotes(w io.Writer, quotes []domain.Quote) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", quotesSheet); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if err := f.SetSheetRow(quotesSheet, "A1", &quoteHeader); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.ColumnNumberToName(len(quoteHeader))
		_ = f.SetCellStyle(quotesSheet, "A1", last+"1", bold)
	}

	for i, q := range quotes {
		ch := q.Characterization
		b := q.Cost.Breakdown
		row := []interface{}{
			q.ID.String(),
			q.UploadedModelID.String(),
			q.CreatedAt.Format("2006-01-02 15:04"),
			q.ExpireAt.Format("2006-01-02 15:04"),
			string(q.Material),
			string(q.Quality),
			q.InfillPct,
			ch.Volume,
			ch.Weight,
			ch.PrintTime,
			string(ch.Complexity),
			amount(q.Cost.MaterialCost),
			amount(q.Cost.TimeCost),
			amount(q.Cost.TotalCost),
			b.QualityMultiplier,
			b.InfillMultiplier,
			b.HourlyRate,
			strings.Join(q.Recommendation.WarningMessages, "; "),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(quotesSheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

func amount(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
