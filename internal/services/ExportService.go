package services

import (
	"fmt"
	"infcheck/internal/models"
	"infcheck/internal/providers"

	"github.com/xuri/excelize/v2"
)

const ExportSheetName = "Selected Influencers"

// exportHeaders is the fixed export layout consumers of the file expect:
// spacer columns included, in this exact order.
var exportHeaders = []string{
	"ID", "col_1", "col_2", "col_3", "col_4",
	"Page link", "Category", "col_5",
	"Follower", "ER", "Ave Like", "Ave Comment", "COL_6", "Post Price",
}

type ExportServiceInterface interface {
	// Workbook renders the selected pending candidates of a session into an
	// XLSX workbook. An empty selection exports every row still flagged
	// Select.
	Workbook(sess *UploadSession, selected []string) ([]byte, error)
}

type ExportService struct {
	logger providers.Logger
}

func NewExportService(logger providers.Logger) ExportServiceInterface {
	return &ExportService{logger: logger}
}

func (es *ExportService) Workbook(sess *UploadSession, selected []string) ([]byte, error) {
	picked := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		picked[models.NormalizeIdentity(id)] = struct{}{}
	}

	file := excelize.NewFile()
	defer file.Close()
	file.SetSheetName("Sheet1", ExportSheetName)

	if err := file.SetSheetRow(ExportSheetName, "A1", &exportHeaders); err != nil {
		return nil, err
	}

	line := 2
	for _, row := range sess.Result.Pending {
		if len(picked) > 0 {
			if _, ok := picked[row.Candidate.ID]; !ok {
				continue
			}
		} else if !row.Select {
			continue
		}
		cells := exportCells(row)
		if err := file.SetSheetRow(ExportSheetName, fmt.Sprintf("A%d", line), &cells); err != nil {
			return nil, err
		}
		line++
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	es.logger.Debugf(providers.TypeApp, "Exported %d row(s) from session %s", line-2, sess.Hash[:8])
	return buf.Bytes(), nil
}

// exportCells maps one pending candidate back through its original upload
// columns into the fixed layout.
func exportCells(row models.PendingRow) []interface{} {
	c := row.Candidate
	return []interface{}{
		c.ID, "", "", "", "",
		row.Link, c.Field("Category"), "",
		c.Field("Followers"), c.Field("IER"), c.Field("Avg like"), c.Field("Avg comments"), "", c.Field("Post price"),
	}
}
