package changes

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
)

// FileStat is the line count of one file in a patch.
type FileStat struct {
	Path    string
	Added   int
	Removed int
}

// PatchSummary lists the files touched by a patch in patch order.
type PatchSummary struct {
	Files   []FileStat
	Added   int
	Removed int
}

// DownloadPatch returns the current revision's patch in git format-patch
// form. The server sends it base64-encoded and unframed.
func (s *Service) DownloadPatch(ctx context.Context, id ChangeID) ([]byte, error) {
	raw, err := s.client.SyncRaw(ctx, http.MethodGet, id.path("/revisions/current/patch"))
	if err != nil {
		return nil, err
	}

	patch, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, domainErrors.ErrDecodePatch.WithError(err).
			WithContext("change", id.String())
	}
	return patch, nil
}

// SummarizePatch counts added and removed lines per file.
func SummarizePatch(patch []byte) (*PatchSummary, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(bytes.NewReader(unifiedDiff(patch))).ReadAllFiles()
	if err != nil {
		return nil, domainErrors.ErrDecodePatch.WithError(err)
	}

	summary := &PatchSummary{}
	for _, fd := range fileDiffs {
		stat := FileStat{Path: filePath(fd)}
		for _, h := range fd.Hunks {
			for _, line := range bytes.Split(h.Body, []byte("\n")) {
				if len(line) == 0 {
					continue
				}
				switch line[0] {
				case '+':
					stat.Added++
				case '-':
					stat.Removed++
				}
			}
		}
		summary.Files = append(summary.Files, stat)
		summary.Added += stat.Added
		summary.Removed += stat.Removed
	}
	return summary, nil
}

// unifiedDiff drops the mail headers and the signature trailer that
// format-patch wraps around the diff.
func unifiedDiff(patch []byte) []byte {
	if i := bytes.Index(patch, []byte("diff --git ")); i > 0 {
		patch = patch[i:]
	}
	for _, sig := range []string{"\n-- \n", "\n--\n"} {
		if i := bytes.LastIndex(patch, []byte(sig)); i >= 0 {
			patch = patch[:i+1]
			break
		}
	}
	return patch
}

func filePath(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	name = strings.TrimPrefix(name, "a/")
	return strings.TrimPrefix(name, "b/")
}
