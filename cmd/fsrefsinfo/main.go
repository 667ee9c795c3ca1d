// Command fsrefsinfo opens a ReFS volume, reports its geometry, and,
// given --entry_index, walks into a numbered child of the root directory.
// It is a thin consumer of pkg/fsrefs; escaped printing and locale
// handling live here, never in the core decoder.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/blang/semver"
	selfupdate "github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/libyal/go-fsrefs/internal/report"
	"github.com/libyal/go-fsrefs/internal/settings"
	"github.com/libyal/go-fsrefs/pkg/fsrefs"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var volumeOffset int64
	var entryIndex int
	var verbose bool
	var selfUpdate bool
	var reportPath string
	var reportSummaryOnly bool

	cmd := &cobra.Command{
		Use:           "fsrefsinfo [source]",
		Short:         "Report ReFS volume metadata and walk its root directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if selfUpdate {
				return runSelfUpdate(cmd.Context())
			}
			if len(args) == 0 {
				return fmt.Errorf("source path is required")
			}
			if err := runInfo(args[0], volumeOffset, entryIndex, verbose); err != nil {
				return err
			}
			if reportPath != "" {
				return runReport(args[0], volumeOffset, reportPath, reportSummaryOnly)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&volumeOffset, "volume_offset", 0, "byte offset of the ReFS volume within the source")
	cmd.Flags().IntVar(&entryIndex, "entry_index", -1, "index of a root-directory child to report, if >= 0")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print the descent trace recorded during open")
	cmd.Flags().BoolVar(&selfUpdate, "self-update", false, "update fsrefsinfo to the latest version")
	cmd.Flags().StringVar(&reportPath, "report", "", `write a text report to this path ("-" for stdout)`)
	cmd.Flags().BoolVar(&reportSummaryOnly, "report-summary-only", false, "omit the directory tree from the report")

	return cmd
}

func runReport(path string, volumeOffset int64, reportPath string, summaryOnly bool) error {
	opts := fsrefs.DefaultOpenOptions()
	opts.VolumeOffset = volumeOffset

	vol, err := fsrefs.Open(path, opts)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer vol.Close()

	rptSettings := settings.Default("")
	rptSettings.SummaryOnly = summaryOnly

	written, err := report.WriteReport(reportPath, vol, rptSettings)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if written != "-" {
		fmt.Printf("report written to:\t%s\n", written)
	}
	return nil
}

func runInfo(path string, volumeOffset int64, entryIndex int, verbose bool) error {
	opts := fsrefs.DefaultOpenOptions()
	opts.VolumeOffset = volumeOffset
	opts.Verbose = verbose

	vol, err := fsrefs.Open(path, opts)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer vol.Close()

	major, minor := vol.Version()
	fmt.Printf("version:\t\t%d.%d\n", major, minor)
	fmt.Printf("serial number:\t\t0x%016x\n", vol.SerialNumber())
	fmt.Printf("bytes per sector:\t%d\n", vol.BytesPerSector())
	fmt.Printf("cluster block size:\t%d\n", vol.ClusterBlockSize())
	fmt.Printf("volume size:\t\t%d\n", vol.VolumeSize())

	if verbose {
		for _, frame := range vol.DescentTrace() {
			fmt.Printf("trace:\t\t\t%s\n", frame.String())
		}
	}

	root := vol.RootDirectory()
	if root == nil {
		fmt.Println("root directory:\t\tnot found")
		return nil
	}

	n, err := root.NumberOfSubEntries()
	if err != nil {
		return fmt.Errorf("enumerate root directory: %w", err)
	}
	fmt.Printf("root entries:\t\t%d\n", n)

	if entryIndex < 0 {
		return nil
	}
	child, err := root.SubEntryByIndex(entryIndex)
	if err != nil {
		return fmt.Errorf("entry %d: %w", entryIndex, err)
	}
	fmt.Printf("entry %d name:\t\t%s\n", entryIndex, child.NameUTF8())
	fmt.Printf("entry %d directory:\t%t\n", entryIndex, child.IsDirectory())
	fmt.Printf("entry %d size:\t\t%d\n", entryIndex, child.Size())
	return nil
}

func runSelfUpdate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if version == "" || version == "dev" {
		return fmt.Errorf("self-update is only available in release builds")
	}
	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("could not parse version: %w", err)
	}

	const slug = "libyal/go-fsrefs"
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(slug))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s/%s could not be found from github repository", slug, version)
	}
	if latest.LessOrEqual(version) {
		fmt.Printf("current binary is the latest version: %s\n", version)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}
	fmt.Printf("successfully updated to version: %s\n", latest.Version())
	return nil
}
