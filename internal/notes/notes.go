package notes

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Entry is one note file in the data directory.
type Entry struct {
	Path    string
	Title   string
	Size    int64
	ModTime time.Time
}

// DefaultDir is where notes live unless overridden: ~/.local/share/fire-notes.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fire-notes"
	}
	return filepath.Join(home, ".local", "share", "fire-notes")
}

// EnsureDir creates the notes directory when missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// Scan lists the .md and .txt notes under dir, newest first. Titles are
// probed from file content concurrently.
func Scan(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("notes: scan %s: %w", dir, err)
	}
	var out []Entry
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".md" && ext != ".txt" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	g := new(errgroup.Group)
	g.SetLimit(8)
	for i := range out {
		i := i
		g.Go(func() error {
			out[i].Title = probeTitle(out[i].Path)
			return nil
		})
	}
	g.Wait()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].ModTime.After(out[j].ModTime)
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// probeTitle reads the first non-empty line, trimming markdown heading marks.
// Falls back to the file name.
func probeTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return filepath.Base(path)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 4096), 4096)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line == "" {
			continue
		}
		return line
	}
	return filepath.Base(path)
}

// GenerateFilename allocates a fresh note path like note_1724198400.md,
// stepping the timestamp on collision.
func GenerateFilename(dir string) string {
	ts := time.Now().Unix()
	for {
		path := filepath.Join(dir, fmt.Sprintf("note_%d.md", ts))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		ts++
	}
}
