package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/matsen/bibdedupe/internal/citation"
	"github.com/matsen/bibdedupe/internal/importer"
	"github.com/matsen/bibdedupe/internal/storage"
)

var (
	parseFormat    string
	parseSource    string
	parseAssignIDs bool
	parseOutput    string
)

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "", "Input format (detected from name and content when omitted)")
	parseCmd.Flags().StringVar(&parseSource, "source", "", "Source tag stamped on every citation, e.g. PubMed")
	parseCmd.Flags().BoolVar(&parseAssignIDs, "assign-ids", false, "Give citations without an ID a random UUID")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "Write citations to this JSONL file instead of stdout")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Convert bibliographic exports to citation JSONL",
	Long: `Convert bibliographic exports to citation JSONL.

Examples:
  bibdedupe parse --source PubMed pubmed-set.nbib > pubmed.jsonl
  bibdedupe parse --format csv --source Scopus scopus.csv -o scopus.jsonl
  bibdedupe parse --assign-ids papers/*.pdf -o pdfs.jsonl

Formats: ris, pubmed (medline, nbib), endnote (xml), csv, tsv, json (jsonl),
paperpile, pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

// ParseResult summarizes a parse run written to a file.
type ParseResult struct {
	Files      int    `json:"files"`
	Citations  int    `json:"citations"`
	AssignedID int    `json:"assigned_ids"`
	RenamedID  int    `json:"renamed_ids"`
	Output     string `json:"output"`
}

func runParse(cmd *cobra.Command, args []string) error {
	cits, err := parseFiles(args, parseFormat, parseSource)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	result := ParseResult{Files: len(args), Citations: len(cits), Output: parseOutput}
	if parseAssignIDs {
		result.AssignedID = assignIDs(cits)
	}
	result.RenamedID = storage.UniqueIDs(cits)

	if parseOutput == "" {
		if err := storage.Encode(os.Stdout, cits); err != nil {
			exitWithError(ExitError, "writing citations: %v", err)
		}
		return nil
	}

	if err := storage.WriteAll(parseOutput, cits); err != nil {
		exitWithError(ExitError, "writing citations: %v", err)
	}

	if humanOutput {
		fmt.Printf("Parsed %s citations from %d files into %s\n",
			bold(result.Citations), result.Files, parseOutput)
		if result.AssignedID > 0 {
			fmt.Printf("  %s assigned %d new IDs\n", gray("·"), result.AssignedID)
		}
		if result.RenamedID > 0 {
			fmt.Printf("  %s renamed %d colliding IDs\n", yellow("!"), result.RenamedID)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// parseFiles reads and parses every path. An empty format is detected per
// file. Progress is logged at most once per second.
func parseFiles(paths []string, format, source string) ([]citation.Citation, error) {
	progress := rate.Sometimes{Interval: time.Second}
	log := zap.L()

	var all []citation.Citation
	for i, path := range paths {
		cits, err := parseFile(path, format, source)
		if err != nil {
			return nil, err
		}
		all = append(all, cits...)

		progress.Do(func() {
			log.Info("parse: progress",
				zap.Int("files_done", i+1),
				zap.Int("files_total", len(paths)),
				zap.Int("citations", len(all)))
		})
	}
	return all, nil
}

func parseFile(path, format, source string) ([]citation.Citation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(citation.FromIO(err), "reading %s", path)
	}
	content := string(data)

	if format == "" {
		format, err = importer.DetectFormat(filepath.Base(path), content)
		if err != nil {
			return nil, eris.Wrapf(err, "detecting format of %s", path)
		}
	}

	p, err := importer.ForFormat(format, source)
	if err != nil {
		return nil, err
	}

	cits, err := p.Parse(content)
	if err != nil {
		return nil, eris.Wrapf(err, "parsing %s as %s", path, format)
	}
	zap.L().Debug("parse: file done",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("citations", len(cits)))
	return cits, nil
}

// assignIDs gives every citation without an ID a random UUID and returns the
// number assigned.
func assignIDs(cits []citation.Citation) int {
	n := 0
	for i := range cits {
		if cits[i].ID == "" {
			cits[i].ID = uuid.NewString()
			n++
		}
	}
	return n
}
