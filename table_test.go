package dtanalysis_test

import (
	"errors"
	"testing"

	"github.com/ezachrisen/dtanalysis"
	"github.com/matryer/is"
)

func TestTableEdits(t *testing.T) {
	is := is.New(t)
	tbl := approvals()
	clone := tbl.Clone()

	old, err := tbl.SetCell(dtanalysis.Coordinate{Row: 0, Column: colAgeLow}, 9)
	is.NoErr(err)
	is.Equal(0, old)
	is.Equal(0, clone.Data[0][colAgeLow])

	_, err = tbl.Cell(dtanalysis.Coordinate{Row: 7, Column: 0})
	is.True(errors.Is(err, dtanalysis.ErrCoordinateOutOfRange))
	_, err = tbl.Cell(dtanalysis.Coordinate{Row: 0, Column: -1})
	is.True(errors.Is(err, dtanalysis.ErrCoordinateOutOfRange))

	is.NoErr(tbl.RemoveColumns(colAgeLow, 2))
	is.Equal(3, len(tbl.Columns))
	is.Equal(3, len(tbl.Data[0]))
	is.Equal(true, tbl.Data[0][2])

	is.NoErr(tbl.InsertColumns(1, dtanalysis.Column{UUID: "n", Header: "Note", Role: dtanalysis.Metadata}))
	is.Equal(nil, tbl.Data[6][1])
	is.NoErr(tbl.Validate())

	is.True(errors.Is(tbl.InsertRow(0, dtanalysis.Row(1)), dtanalysis.ErrColumnMismatch))
	is.True(errors.Is(tbl.RemoveRow(7), dtanalysis.ErrCoordinateOutOfRange))
	is.True(errors.Is(tbl.RemoveColumns(2, 3), dtanalysis.ErrCoordinateOutOfRange))
}

func TestTableValidate(t *testing.T) {
	is := is.New(t)

	tbl := approvals()
	tbl.Columns[1].UUID = ""
	is.True(tbl.Validate() != nil)

	tbl = approvals()
	tbl.Columns[1].UUID = tbl.Columns[0].UUID
	is.True(tbl.Validate() != nil)

	tbl = approvals()
	tbl.Columns[2].UUID = dtanalysis.RowIndexDefinition.ID()
	is.True(tbl.Validate() != nil) // reserved

	tbl = approvals()
	tbl.Data[3] = tbl.Data[3][:2]
	is.True(errors.Is(tbl.Validate(), dtanalysis.ErrColumnMismatch))

	_, err := dtanalysis.NewRuleInspectorCache(tbl, nil)
	is.True(errors.Is(err, dtanalysis.ErrColumnMismatch))
}
