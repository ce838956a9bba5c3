package acquisition

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/victordov/telegram-video-downloader/internal/core/errors"
)

// maxSuffixIndex bounds the " #<i>" suffixes yt-dlp appends to colliding names.
const maxSuffixIndex = 9

// candidateExts are tried in order when the predicted extension is wrong.
var candidateExts = []string{".mp4", ".webm", ".mkv", ".avi", ".mov"}

// ResolveArtifact finds the downloaded file. An existing authoritative path wins.
// Otherwise the hint is tried as-is, then "<base> #<i><ext>" for i in 1..9, then
// "<base><ext>", with ext iterating over the candidate extensions.
func ResolveArtifact(authoritative, hint string) (string, error) {
	if authoritative != "" && isFile(authoritative) {
		return authoritative, nil
	}

	if hint == "" {
		return "", fmt.Errorf("%w: no path reported", errors.ErrArtifactNotFound)
	}

	for _, candidate := range Candidates(hint) {
		if isFile(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", errors.ErrArtifactNotFound, hint)
}

// Candidates lists the paths ResolveArtifact checks for a hint, in order.
func Candidates(hint string) []string {
	base := strings.TrimSuffix(hint, filepath.Ext(hint))
	out := make([]string, 0, 1+len(candidateExts)*(maxSuffixIndex+1))
	out = append(out, hint)

	for i := 1; i <= maxSuffixIndex; i++ {
		for _, ext := range candidateExts {
			out = append(out, fmt.Sprintf("%s #%d%s", base, i, ext))
		}
	}

	for _, ext := range candidateExts {
		out = append(out, base+ext)
	}

	return out
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
