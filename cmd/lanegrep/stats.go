package main

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hupe1980/lanegrep"
)

func writeStats(w io.Writer, rows []fileStats, dev lanegrep.DeviceInfo) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Format", "Size", "Windows", "Lanes", "Matches", "Dropped", "Elapsed"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	var (
		bytes   int64
		windows int
		lanes   int
		matches int
		dropped uint64
		elapsed time.Duration
		failed  int
	)
	for _, r := range rows {
		if r.Err != nil {
			failed++
			tbl.AppendRow(table.Row{r.Path, "error", "-", "-", "-", "-", "-", "-"})
			continue
		}
		tbl.AppendRow(table.Row{
			r.Path,
			r.Format,
			humanize.IBytes(uint64(r.Bytes)),
			humanize.Comma(int64(r.Windows)),
			humanize.Comma(int64(r.Lanes)),
			humanize.Comma(int64(r.Matches)),
			humanize.Comma(int64(r.Dropped)),
			r.Elapsed.Round(time.Microsecond),
		})
		bytes += r.Bytes
		windows += r.Windows
		lanes += r.Lanes
		matches += r.Matches
		dropped += r.Dropped
		elapsed += r.Elapsed
	}

	tbl.AppendFooter(table.Row{
		humanize.Comma(int64(len(rows))) + " files",
		humanize.Comma(int64(failed)) + " failed",
		humanize.IBytes(uint64(bytes)),
		humanize.Comma(int64(windows)),
		humanize.Comma(int64(lanes)),
		humanize.Comma(int64(matches)),
		humanize.Comma(int64(dropped)),
		elapsed.Round(time.Microsecond),
	})
	tbl.SetCaption("device %s, %d workers, peak memory %s",
		dev.Name, dev.Workers, humanize.IBytes(uint64(dev.PeakMemoryInUse)))
	tbl.Render()
}
