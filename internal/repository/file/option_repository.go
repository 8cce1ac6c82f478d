package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/pkg/store"
)

const logModule = "OPTIONS"

var fileNames = map[store.Category]string{
	store.CategoryEmotions: "emotions.txt",
	store.CategoryTags:     "tags.txt",
}

// OptionRepository keeps per-user option lists as line-delimited text files under
// <root>/<userFolder>/.
type OptionRepository struct {
	root   string
	logger logger.ILogger
}

func NewOptionRepository(root string, log logger.ILogger) *OptionRepository {
	return &OptionRepository{root: root, logger: log}
}

// Path returns the file that backs a category for a user.
func (r *OptionRepository) Path(userFolder string, category store.Category) string {
	name, ok := fileNames[category]
	if !ok {
		name = string(category) + ".txt"
	}
	return filepath.Join(r.root, userFolder, name)
}

// Load reads both lists. A list that cannot be read comes back empty; the reason is
// logged, because "nothing configured yet" is a normal state for a new user.
func (r *OptionRepository) Load(userFolder string) (emotions []string, tags []string) {
	return r.loadCategory(userFolder, store.CategoryEmotions), r.loadCategory(userFolder, store.CategoryTags)
}

func (r *OptionRepository) loadCategory(userFolder string, category store.Category) []string {
	path := r.Path(userFolder, category)
	values, err := readLines(path)
	if err != nil {
		r.logger.Error(logModule, "Can't read options file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return []string{}
	}
	return values
}

// Append parses a comma-separated list and appends the non-empty, trimmed values to
// the category file, one per line. It returns what was written.
func (r *OptionRepository) Append(userFolder string, category store.Category, raw string) ([]string, error) {
	values := ParseValues(raw)

	path := r.Path(userFolder, category)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create options dir: %w", err)
	}
	if len(values) == 0 {
		return values, nil
	}

	payload := strings.Join(values, "\n")
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		payload = "\n" + payload
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open options file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(payload); err != nil {
		return nil, fmt.Errorf("failed to write options file %s: %w", path, err)
	}

	r.logger.Info(logModule, "Options appended", map[string]interface{}{
		"path":   path,
		"values": values,
	})
	return values, nil
}

// ParseValues splits free text on commas, trims, and drops empty entries.
func ParseValues(raw string) []string {
	values := []string{}
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// readLines splits the file into lines the way a reader of the file would see them:
// blank lines in the middle stay, a final newline does not add an entry.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []string{}, nil
	}

	content := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}
