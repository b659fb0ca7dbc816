package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/reconciliation"
)

// SampleSetID names the document set loaded into an empty database.
const SampleSetID = "SAMPLE-SET-1"

// sampleFile is one document of the sample set. The file name (without
// extension) is the document type.
type sampleFile struct {
	docType domain.DocumentType
	path    string
}

func findSampleDir(dir string) (string, error) {
	// Try multiple possible locations for the sample set.
	candidates := []string{dir}
	if exe, err := os.Executable(); err == nil {
		base := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(base, dir),
			filepath.Join(base, "..", "..", dir),
		)
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && fi.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("sample directory %q not found", dir)
}

func listSampleFiles(dir string) ([]sampleFile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var files []sampleFile
	for _, p := range matches {
		name := strings.TrimSuffix(filepath.Base(p), ".txt")
		t, err := domain.ParseDocumentType(name)
		if err != nil {
			continue
		}
		files = append(files, sampleFile{docType: t, path: p})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sample documents in %s", dir)
	}
	return files, nil
}

// seedSampleSet registers the sample documents as one set and analyses it so
// the API has a report to show straight away.
func seedSampleSet(ctx context.Context, svc *reconciliation.Service, dir string, log logrus.FieldLogger) error {
	dir, err := findSampleDir(dir)
	if err != nil {
		return err
	}
	files, err := listSampleFiles(dir)
	if err != nil {
		return err
	}

	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.path, err)
		}
		if _, _, err := svc.RegisterDocument(ctx, reconciliation.NewDocument{
			SetID:      SampleSetID,
			Type:       string(f.docType),
			SourceName: filepath.Base(f.path),
			RawText:    string(data),
		}); err != nil {
			return fmt.Errorf("register %s: %w", f.path, err)
		}
	}

	report, err := svc.AnalyzeSet(ctx, SampleSetID)
	if err != nil {
		return fmt.Errorf("analyze sample set: %w", err)
	}
	log.WithFields(logrus.Fields{
		"set_id":         SampleSetID,
		"documents":      len(files),
		"findings":       report.Summary.TotalFindings,
		"recommendation": report.Summary.Recommendation,
	}).Info("seeded sample document set")
	return nil
}
