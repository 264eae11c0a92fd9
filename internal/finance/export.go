package finance

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func optionalAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return formatAmount(*v)
}

// CollectionsCSV renders collections with the same columns as the JSON view.
func CollectionsCSV(items []Collection) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	_ = writer.Write([]string{"id", "project", "payer", "amount", "type", "date", "status", "outstandingAmount"})
	for _, c := range items {
		_ = writer.Write([]string{
			c.ID,
			c.Project,
			c.Payer,
			formatAmount(c.Amount),
			string(c.Type),
			c.Date,
			string(c.Status),
			optionalAmount(c.OutstandingAmount),
		})
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

// DepositsCSV renders deposits with the same columns as the JSON view.
func DepositsCSV(items []Deposit) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	_ = writer.Write([]string{"id", "accountHead", "amount", "date", "status"})
	for _, d := range items {
		_ = writer.Write([]string{d.ID, d.AccountHead, formatAmount(d.Amount), d.Date, string(d.Status)})
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}
