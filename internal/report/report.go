package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/libyal/go-fsrefs/internal/settings"
	"github.com/libyal/go-fsrefs/internal/util"
	"github.com/libyal/go-fsrefs/pkg/fsrefs"
)

const productVersion = "0.1.0"

// WriteReport renders vol as a text report and either writes it to path
// (or settings.ReportFileName, "{0}" substituted with the volume serial
// number) or to stdout when the resolved name is "-".
func WriteReport(path string, vol *fsrefs.Volume, opts settings.Settings) (string, error) {
	serial := fmt.Sprintf("%016X", vol.SerialNumber())

	reportName := strings.ReplaceAll(opts.ReportFileName, "{0}", serial)
	if reportName != "-" && filepath.Ext(reportName) == "" {
		reportName += ".txt"
	}
	if path != "" {
		reportName = path
	}

	if reportName != "-" {
		if _, err := os.Stat(reportName); err == nil {
			backup := fmt.Sprintf("%s.%d", reportName, time.Now().Unix())
			_ = os.Rename(reportName, backup)
		}
	}

	var output string
	if opts.SummaryOnly {
		output = buildSummary(vol)
	} else {
		output = buildFullReport(vol, opts)
	}

	if reportName == "-" {
		_, err := os.Stdout.WriteString(output)
		return reportName, err
	}
	return reportName, os.WriteFile(reportName, []byte(output), 0o644)
}

func buildSummary(vol *fsrefs.Volume) string {
	major, minor := vol.Version()

	var b strings.Builder
	fmt.Fprintf(&b, "%-16s%d.%d\n", "Format:", major, minor)
	fmt.Fprintf(&b, "%-16s%016X\n", "Serial Number:", vol.SerialNumber())
	fmt.Fprintf(&b, "%-16s%s bytes\n", "Volume Size:", util.FormatNumber(int64(vol.VolumeSize())))
	return b.String()
}

func buildFullReport(vol *fsrefs.Volume, opts settings.Settings) string {
	major, minor := vol.Version()

	var b strings.Builder
	fmt.Fprintf(&b, "%-16s%d.%d\n", "Format:", major, minor)
	fmt.Fprintf(&b, "%-16s%016X\n", "Serial Number:", vol.SerialNumber())
	fmt.Fprintf(&b, "%-16s%d\n", "Bytes/Sector:", vol.BytesPerSector())
	fmt.Fprintf(&b, "%-16s%d\n", "Cluster Size:", vol.ClusterBlockSize())
	fmt.Fprintf(&b, "%-16s%s bytes\n", "Volume Size:", util.FormatNumber(int64(vol.VolumeSize())))
	if opts.IncludeVersionAndNotes {
		fmt.Fprintf(&b, "%-16s%s\n", "fsrefsinfo:", productVersion)
	}
	b.WriteString("\n\n")

	root := vol.RootDirectory()
	if root == nil {
		b.WriteString("VOLUME TREE:\n\n(no root directory found)\n")
		return b.String()
	}

	b.WriteString("VOLUME TREE:\n\n")
	fmt.Fprintf(&b, "%-48s%-10s%-16s%s\n", "Name", "Kind", "Size", "Modified")
	fmt.Fprintf(&b, "%-48s%-10s%-16s%s\n", strings.Repeat("-", 4), strings.Repeat("-", 4), strings.Repeat("-", 4), strings.Repeat("-", 8))

	if err := writeTree(&b, root, "", opts.MaxEntriesPerDirectory); err != nil {
		fmt.Fprintf(&b, "\nWARNING: tree walk stopped early: %s\n", err)
	}
	return b.String()
}

func writeTree(b *strings.Builder, dir *fsrefs.Entry, indent string, maxEntries int) error {
	n, err := dir.NumberOfSubEntries()
	if err != nil {
		return err
	}
	if n > maxEntries {
		n = maxEntries
	}

	for i := 0; i < n; i++ {
		entry, err := dir.SubEntryByIndex(i)
		if err != nil {
			return err
		}

		kind := "file"
		if entry.IsDirectory() {
			kind = "dir"
		}
		fmt.Fprintf(b, "%-48s%-10s%-16s%s\n",
			indent+entry.NameUTF8(),
			kind,
			util.FormatFileSize(float64(entry.Size()), true),
			entry.ModificationTime().Time().Format(time.RFC3339),
		)

		if entry.IsDirectory() {
			if err := writeTree(b, entry, indent+"  ", maxEntries); err != nil {
				return err
			}
		}
	}
	return nil
}
