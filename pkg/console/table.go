// Package console renders data frames for the terminal.
package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render writes df to w as a borderless table. The first column is the
// dense row index under an empty header, followed by the frame's columns,
// and a "[N rows x M columns]" caption closes the table.
func Render(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}

	t := table.NewWriter()
	t.SetStyle(style())

	names := df.Names()
	header := make(table.Row, 0, len(names)+1)
	header = append(header, "")
	for _, name := range names {
		header = append(header, name)
	}
	t.AppendHeader(header)

	records := df.Records()
	for i, record := range records[1:] {
		row := make(table.Row, 0, len(record)+1)
		row = append(row, strconv.Itoa(i))
		for _, v := range record {
			row = append(row, v)
		}
		t.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(names)+1)
	for i := 1; i <= len(names)+1; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i,
			Align:       text.AlignRight,
			AlignHeader: text.AlignRight,
		})
	}
	configs[0].Align = text.AlignLeft
	t.SetColumnConfigs(configs)

	t.SetCaption("[%d rows x %d columns]", df.Nrow(), df.Ncol())

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func style() table.Style {
	s := table.StyleDefault
	s.Name = "Frame"
	s.Format.Header = text.FormatDefault
	s.Options = table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	}
	return s
}
