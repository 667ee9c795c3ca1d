package settings

import "path/filepath"

// Settings controls internal/report's output.
type Settings struct {
	ReportFileName         string
	IncludeVersionAndNotes bool
	SummaryOnly            bool
	MaxEntriesPerDirectory int
}

func Default(reportBaseDir string) Settings {
	return Settings{
		ReportFileName:         filepath.Join(reportBaseDir, "fsrefsinfo_{0}.txt"),
		IncludeVersionAndNotes: true,
		SummaryOnly:            false,
		MaxEntriesPerDirectory: 200,
	}
}
