package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/ingestion"
	"github.com/tradedocs/lcverify/internal/logger"
	"github.com/tradedocs/lcverify/internal/reconciliation"
	"github.com/tradedocs/lcverify/internal/rules"
)

func analyzeCmd(envFile *string) *cobra.Command {
	var (
		docs  []string
		setID string
	)

	cmd := &cobra.Command{
		Use:   "analyze --doc TYPE=PATH [--doc TYPE=PATH ...]",
		Short: "Analyse a document set from files and print the JSON report",
		Long: `Analyse a document set without touching the database. Each --doc names
a document type and a text file, e.g. --doc credit_message=mt700.txt.
The type may be left empty (=PATH) to let the classifier decide.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*envFile)
			rs, err := rules.Load(cfg.RulesPath)
			if err != nil {
				return fmt.Errorf("load rules: %w", err)
			}

			set := make([]*domain.Document, 0, len(docs))
			for _, spec := range docs {
				d, err := loadDocSpec(spec)
				if err != nil {
					return err
				}
				d.SetID = setID
				set = append(set, d)
			}
			if len(set) == 0 {
				return fmt.Errorf("at least one --doc is required")
			}

			log := logger.NewWithOutput(cfg.LogLevel, cmd.ErrOrStderr())
			extractor := ingestion.NewService(rs, nil, extractionOptions(cfg), log, nil)
			outcomes := extractor.ExtractAll(cmd.Context(), set)
			report := reconciliation.NewEngine(rs).BuildReport(setID, outcomes)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringArrayVar(&docs, "doc", nil, "Document as TYPE=PATH (repeatable)")
	cmd.Flags().StringVar(&setID, "set", "CLI", "Document set identifier used in the report")
	return cmd
}

// parseDocSpec splits TYPE=PATH. A bare PATH leaves the type unknown.
func parseDocSpec(spec string) (domain.DocumentType, string, error) {
	typ, path, found := strings.Cut(spec, "=")
	if !found {
		typ, path = "", spec
	}
	if strings.TrimSpace(path) == "" {
		return "", "", fmt.Errorf("--doc %q: missing path", spec)
	}
	t, err := domain.ParseDocumentType(typ)
	if err != nil {
		return "", "", fmt.Errorf("--doc %q: %w", spec, err)
	}
	return t, path, nil
}

func loadDocSpec(spec string) (*domain.Document, error) {
	t, path, err := parseDocSpec(spec)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.Document{
		ID:         uuid.NewString(),
		Type:       t,
		SourceName: path,
		RawText:    string(data),
		Status:     domain.StatusPending,
	}, nil
}

func rulesCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the loaded UCP 600 rule table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*envFile)
			rs, err := rules.Load(cfg.RulesPath)
			if err != nil {
				return fmt.Errorf("load rules: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rules version %s\n\n", rs.Version())

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tREFERENCE\tSEVERITY\tMISMATCH")
			for _, r := range rs.Rules() {
				sev := string(r.Severity)
				if sev == "" {
					sev = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Field, r.Reference, sev, rs.FieldSeverity(r.Field))
			}
			fb := rs.Fallback()
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", "*", fb.Reference, "-", "-")
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, "\nmandatory fields:")
			for _, t := range rs.MandatoryTypes() {
				names := make([]string, 0)
				for _, n := range rs.MandatoryFields(t) {
					names = append(names, string(n))
				}
				fmt.Fprintf(out, "  %-22s %s\n", t, strings.Join(names, ", "))
			}
			return nil
		},
	}
}
