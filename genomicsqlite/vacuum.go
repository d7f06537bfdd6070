package genomicsqlite

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/genomicsqlite/gogenomicsqlite/vfs"
)

// EmitVacuumInto implements C6 (§4.6): it returns the pragma statements that
// apply dest's page-size and compression configuration, followed by a
// VACUUM INTO targeting dest through the compressed VFS. The caller
// executes these on any connection that has the extension loaded and was
// itself opened with URI filenames enabled.
func EmitVacuumInto(destPath string, config map[string]interface{}) ([]string, error) {
	cfg, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("vfs", vfs.DefaultVFSName)
	params.Set("outer_page_size", fmt.Sprintf("%d", cfg.OuterPageKiB*1024))
	params.Set("level", fmt.Sprintf("%d", cfg.ZstdLevel))

	uri := fmt.Sprintf("file:%s?%s", destPath, params.Encode())

	return []string{
		fmt.Sprintf("PRAGMA page_size = %d", cfg.InnerPageKiB*1024),
		fmt.Sprintf("VACUUM INTO '%s'", uri),
	}, nil
}

// EmitVacuumIntoSQL joins EmitVacuumInto's statements into one script.
func EmitVacuumIntoSQL(destPath string, config map[string]interface{}) (string, error) {
	stmts, err := EmitVacuumInto(destPath, config)
	if err != nil {
		return "", err
	}
	return strings.Join(stmts, ";\n") + ";", nil
}
