package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/storage"
	"github.com/olekukonko/tablewriter"
)

// WriteReport prints every section: title, one line per user with the
// recommended currencies, and the execution time
func WriteReport(w io.Writer, sections ...Section) error {
	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s.Method); err != nil {
			return err
		}
		for _, row := range s.Rows {
			names := make([]string, 0, len(row.Currencies)+1)
			names = append(names, row.UserID)
			for _, c := range row.Currencies {
				names = append(names, c.Name)
			}
			if _, err := fmt.Fprintln(w, strings.Join(names, " ")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "Execution Time: %v\n", s.Elapsed); err != nil {
			return err
		}
	}
	return nil
}

// WriteValidation prints mean absolute error of every method
func WriteValidation(w io.Writer, results []ValidationResult) error {
	for _, res := range results {
		if _, err := fmt.Fprintf(w, "%s Recommendation MAE: %v\n", res.Method, res.MAE); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary renders a table with per-method statistics
func WriteSummary(w io.Writer, sections []Section) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"method", "users", "recommended", "execution time"})
	for _, s := range sections {
		recommended := 0
		for _, row := range s.Rows {
			recommended += len(row.Currencies)
		}
		tw.Append([]string{
			s.Method,
			fmt.Sprintf("%d", len(s.Rows)),
			fmt.Sprintf("%d", recommended),
			s.Elapsed.String(),
		})
	}
	tw.Render()
}

// Save stores section in the results database and returns the run id
func Save(ctx context.Context, st *storage.Storage, s Section) (string, error) {
	id, err := cm.GetRandomID()
	if err != nil {
		return "", err
	}
	run := storage.Run{
		ID:         id,
		Method:     s.Method,
		StartedAt:  s.StartedAt.Unix(),
		ElapsedMs:  s.Elapsed.Milliseconds(),
		NumAuthors: len(s.Rows),
	}
	recs := make([]storage.Recommendation, 0)
	for _, row := range s.Rows {
		for rank, c := range row.Currencies {
			recs = append(recs, storage.Recommendation{
				UserID:   row.UserID,
				Rank:     rank,
				Currency: c.Name,
				Score:    c.Value,
			})
		}
	}
	if err := st.SaveRun(ctx, run, recs); err != nil {
		return "", err
	}
	return id, nil
}
