package localsite

import (
	"fmt"
	"os"
)

// writeHTMLFile renders the template and writes one file of the export tree.  The
// parent directory exists by the time anyone calls this; exportSpace set it up.
func writeHTMLFile(path string, title string, content string, template string, additionalHeaders ...string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("localsite: couldn't create file %s: %w", path, err)
	}

	defer f.Close()
	if _, err = f.WriteString(RenderHTMLPage(template, title, content, additionalHeaders...)); err != nil {
		return fmt.Errorf("localsite: couldn't write to file %s: %w", path, err)
	}

	return nil
}
