package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/devchat/internal"
	"github.com/iksnae/devchat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session's history",
	Long: `Export a chat session to one of: ` + strings.Join(export.Formats, ", ") + `.

The document is written to standard output unless --out names a directory,
in which case it is saved as session_<id>.<ext> there.
Use 'devchat sessions' to see available session IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		// Reject bad formats before touching the network
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		a := newApp(cfg)
		defer a.Close()
		if err := a.RequireAuth(); err != nil {
			return commandError(err)
		}

		if err := a.registry.Refresh(cmd.Context()); err != nil {
			if internal.IsAuthFailure(err) {
				return commandError(err)
			}
			internal.LogDebug("Session list unavailable, exporting without title: %v", err)
		}
		if err := a.registry.Load(cmd.Context(), sessionID); err != nil {
			return commandError(fmt.Errorf("failed to load session: %w", err))
		}

		session, ok := a.registry.Lookup(sessionID)
		if !ok {
			session = internal.Session{ID: sessionID}
		}
		doc := export.NewDocument(session, a.registry.Transcript().Messages())

		if outputDir == "" {
			return writeExport(exporter, doc, format, cmd.OutOrStdout())
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(outputDir, fmt.Sprintf("session_%s.%s", safeFileName(sessionID), exporter.Extension()))
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", path, err)
		}
		if err := writeExport(exporter, doc, format, file); err != nil {
			_ = file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close file %s: %w", path, err)
		}

		internal.PrintSuccess(fmt.Sprintf("Exported %d message(s) to %s", len(doc.Messages), path))
		return nil
	},
}

func writeExport(exporter export.Exporter, doc *export.Document, format string, w io.Writer) error {
	if err := exporter.Export(doc, w); err != nil {
		return &internal.ExportError{Format: format, SessionID: doc.Session.ID, Err: err}
	}
	return nil
}

// safeFileName replaces path separators so a session ID cannot escape the output directory
func safeFileName(id string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (default: standard output)")
}
