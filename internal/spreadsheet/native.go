// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spreadsheet

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"github.com/yamitzky/xlrd-go/xlrd"

	"github.com/jeranaias/diagutil/internal/util"
)

// Excel built-in number formats used for converted date cells.
const (
	numFmtDate     = 14 // m/d/yyyy
	numFmtDateTime = 22 // m/d/yyyy h:mm
)

// epoch1904Offset converts a 1904-system serial date to the 1900 system
// that .xlsx files written by excelize use.
const epoch1904Offset = 1462

// NativeConverter converts .xls to .xlsx in-process: xlrd reads the BIFF
// workbook and excelize writes the Open XML package.
//
// Cell values, sheet names and sheet order are carried over, as are date
// formats. Fonts, fills, borders, merged regions, charts and formulas are
// not; formula cells keep their cached values.
type NativeConverter struct{}

// Convert implements Converter.
func (NativeConverter) Convert(ctx context.Context, path string) ([]byte, error) {
	if err := checkSource("convert", path); err != nil {
		return nil, err
	}

	format, err := xlrd.InspectFormat(path, nil)
	if err != nil {
		return nil, util.NewFileError("convert", path, util.KindInvalid, err)
	}
	if format != "xls" {
		return nil, util.NewFileError("convert", path, util.KindInvalid, ErrNotLegacy)
	}

	book, err := xlrd.OpenWorkbook(path, &xlrd.OpenWorkbookOptions{FormattingInfo: true})
	if err != nil {
		return nil, util.NewFileError("convert", path, util.KindInvalid, err)
	}

	out := excelize.NewFile()
	defer out.Close()

	w, err := newSheetWriter(out, book)
	if err != nil {
		return nil, util.NewFileError("convert", path, util.KindIO, err)
	}

	for i, name := range book.SheetNames() {
		if err := ctx.Err(); err != nil {
			return nil, util.NewFileError("convert", path, util.KindTimeout, err)
		}
		sheet, err := book.SheetByIndex(i)
		if err != nil {
			return nil, util.NewFileError("convert", path, util.KindInvalid, err)
		}
		if err := w.addSheet(i, name); err != nil {
			return nil, util.NewFileError("convert", path, util.KindIO, err)
		}
		if err := w.copyCells(name, sheet); err != nil {
			return nil, util.NewFileError("convert", path, util.KindIO, err)
		}
	}
	out.SetActiveSheet(0)

	buf, err := out.WriteToBuffer()
	if err != nil {
		return nil, util.NewFileError("convert", path, util.KindIO, err)
	}
	return buf.Bytes(), nil
}

// sheetWriter copies xlrd sheets into an excelize file.
type sheetWriter struct {
	out           *excelize.File
	book          *xlrd.Book
	dateStyle     int
	dateTimeStyle int
}

func newSheetWriter(out *excelize.File, book *xlrd.Book) (*sheetWriter, error) {
	dateStyle, err := out.NewStyle(&excelize.Style{NumFmt: numFmtDate})
	if err != nil {
		return nil, err
	}
	dateTimeStyle, err := out.NewStyle(&excelize.Style{NumFmt: numFmtDateTime})
	if err != nil {
		return nil, err
	}
	return &sheetWriter{out: out, book: book, dateStyle: dateStyle, dateTimeStyle: dateTimeStyle}, nil
}

// addSheet renames the default sheet for the first workbook sheet and
// appends the rest.
func (w *sheetWriter) addSheet(index int, name string) error {
	if index == 0 {
		return w.out.SetSheetName(w.out.GetSheetName(0), name)
	}
	_, err := w.out.NewSheet(name)
	return err
}

func (w *sheetWriter) copyCells(name string, sheet *xlrd.Sheet) error {
	for rowx := 0; rowx < sheet.NRows; rowx++ {
		for colx := 0; colx < sheet.NCols; colx++ {
			if err := w.copyCell(name, sheet, rowx, colx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *sheetWriter) copyCell(name string, sheet *xlrd.Sheet, rowx, colx int) error {
	ctype := sheet.CellType(rowx, colx)
	if ctype == xlrd.XL_CELL_EMPTY || ctype == xlrd.XL_CELL_BLANK {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(colx+1, rowx+1)
	if err != nil {
		return err
	}
	value := sheet.CellValue(rowx, colx)

	switch ctype {
	case xlrd.XL_CELL_NUMBER:
		num, ok := toFloat(value)
		if !ok {
			return w.out.SetCellValue(name, cell, fmt.Sprint(value))
		}
		if !w.isDateCell(sheet.CellXFIndex(rowx, colx)) {
			return w.out.SetCellValue(name, cell, num)
		}
		if w.book.Datemode == 1 {
			num += epoch1904Offset
		}
		if err := w.out.SetCellValue(name, cell, num); err != nil {
			return err
		}
		style := w.dateStyle
		if num != float64(int64(num)) {
			style = w.dateTimeStyle
		}
		return w.out.SetCellStyle(name, cell, cell, style)
	case xlrd.XL_CELL_BOOLEAN:
		return w.out.SetCellValue(name, cell, toBool(value))
	case xlrd.XL_CELL_ERROR:
		return w.out.SetCellValue(name, cell, errorText(value))
	default:
		return w.out.SetCellValue(name, cell, toString(value))
	}
}

func (w *sheetWriter) isDateCell(xfIndex int) bool {
	if xfIndex < 0 || xfIndex >= len(w.book.XFList) {
		return false
	}
	formatKey := w.book.XFList[xfIndex].FormatKey
	if isBuiltinDateFormat(formatKey) {
		return true
	}
	if w.book.FormatMap == nil {
		return false
	}
	format := w.book.FormatMap[formatKey]
	if format == nil || format.FormatString == "" {
		return false
	}
	return xlrd.IsDateFormatString(w.book, format.FormatString)
}

func isBuiltinDateFormat(key int) bool {
	switch key {
	case 14, 15, 16, 17, 18, 19, 20, 21, 22, 27, 30, 36, 50, 57, 58:
		return true
	default:
		return false
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(value)
	}
}

func errorText(value interface{}) string {
	switch v := value.(type) {
	case byte:
		if text, ok := xlrd.ErrorTextFromCode[v]; ok {
			return text
		}
	case int:
		if text, ok := xlrd.ErrorTextFromCode[byte(v)]; ok {
			return text
		}
	}
	return "#ERROR"
}
