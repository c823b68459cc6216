package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"metabin/internal/meta"
	"metabin/internal/pack"
	"metabin/internal/script"
	"metabin/internal/typecode"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect script.toml",
	Short: "List the fields of a layout script with their sizes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		target, err := cfg.TargetSpec()
		if err != nil {
			return err
		}
		s, err := script.Load(args[0])
		if err != nil {
			return err
		}
		m, err := s.Build(cmd.Context(), target, cfg.EmitOptions())
		if err != nil {
			return err
		}
		rows, err := inspectRows(m)
		if err != nil {
			return err
		}
		renderRows(cmd.OutOrStdout(), rows)
		return nil
	},
}

type inspectRow struct {
	Offset    string
	Container string
	Field     string
	Type      string
	Size      string
	Value     string
}

// inspectRows lists every field of m in segment order. Offsets are running
// sums of the packed bytes; array declarations take no space in the payload.
func inspectRows(m *meta.MetaBin) ([]inspectRow, error) {
	target := m.Target()
	var rows []inspectRow
	offset := 0
	add := func(container string, rec pack.FieldRecord, chunk []byte) error {
		p, err := typecode.Parse(rec.Pattern, target)
		if err != nil {
			return err
		}
		row := inspectRow{Offset: "-", Container: container, Field: rec.Name, Type: p.Tokens(), Size: "-"}
		switch {
		case rec.Array:
			row.Type += "[" + strconv.Itoa(rec.Count) + "]"
		case chunk != nil:
			row.Offset = fmt.Sprintf("0x%04x", offset)
			row.Size = strconv.Itoa(len(chunk))
			offset += len(chunk)
		}
		if !rec.Array && rec.Value != nil {
			row.Value = fmt.Sprint(rec.Value)
		}
		rows = append(rows, row)
		return nil
	}

	for _, seg := range m.Segments {
		switch s := seg.(type) {
		case *meta.Struct:
			err := pack.Pairs(s, func(rec pack.FieldRecord, chunk []byte) error {
				return add(s.Name(), rec, chunk)
			})
			if err != nil {
				return nil, err
			}
		case *meta.Function:
			rows = append(rows, inspectRow{Offset: "-", Container: "fn " + s.Name(), Size: "-"})
		case meta.Line:
			row := inspectRow{Offset: "-", Field: s.Text, Size: "-"}
			if len(s.Data) > 0 {
				row.Offset = fmt.Sprintf("0x%04x", offset)
				row.Size = strconv.Itoa(len(s.Data))
				offset += len(s.Data)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func renderRows(out io.Writer, rows []inspectRow) {
	header := inspectRow{Offset: "OFFSET", Container: "CONTAINER", Field: "FIELD", Type: "TYPE", Size: "SIZE", Value: "VALUE"}
	cells := func(r inspectRow) []string {
		return []string{r.Offset, r.Container, r.Field, r.Type, r.Size, r.Value}
	}
	widths := make([]int, 6)
	for _, r := range append([]inspectRow{header}, rows...) {
		for i, c := range cells(r) {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	line := func(r inspectRow) string {
		parts := cells(r)
		for i := range parts[:len(parts)-1] {
			parts[i] = runewidth.FillRight(parts[i], widths[i])
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}
	fmt.Fprintln(out, color.New(color.Bold).Sprint(line(header)))
	for _, r := range rows {
		fmt.Fprintln(out, line(r))
	}
}
