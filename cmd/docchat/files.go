package main

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/deon-gracias/rag/internal/domain"
)

type skippedFile struct {
	Path   string
	Reason string
}

// stageFiles detects each file's type from its content. Files whose type is
// not accepted are reported back instead of staged. An empty accepted list
// lets everything through.
func stageFiles(paths []string, accepted []string) ([]*domain.File, []skippedFile, error) {
	var (
		files   []*domain.File
		skipped []skippedFile
	)

	for _, p := range paths {
		mtype, err := mimetype.DetectFile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", p, err)
		}

		if len(accepted) > 0 && !acceptedType(mtype, accepted) {
			skipped = append(skipped, skippedFile{Path: p, Reason: "unsupported type " + mtype.String()})
			continue
		}

		f, err := domain.FileFromPath(p, mtype.String())
		if err != nil {
			return nil, nil, err
		}
		files = append(files, f)
	}
	return files, skipped, nil
}

func acceptedType(mtype *mimetype.MIME, accepted []string) bool {
	for _, a := range accepted {
		if mtype.Is(a) {
			return true
		}
	}
	return false
}
