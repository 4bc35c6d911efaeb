package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"ringfuzz/internal/script"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addVocabularySeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata", "scripts")
	if _, err := os.Stat(root); err != nil {
		return
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".script" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
}

func addVocabularySeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("i 8 2"))
	for _, tpl := range script.Vocabulary() {
		cmd := script.Command{Op: tpl.Op}
		if tpl.HasArg {
			cmd.Arg = 3
		}
		f.Add([]byte(cmd.String()))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
