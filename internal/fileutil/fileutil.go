// Package fileutil provides backup and write helpers for applying
// conversions to a working tree.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BackupSuffix is appended to a file's name when backing it up.
const BackupSuffix = ".backup"

// Backup copies path to path+BackupSuffix and returns the backup path.
func Backup(path string) (string, error) {
	backupPath := path + BackupSuffix
	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("backing up %s: %w", path, err)
	}
	return backupPath, nil
}

// Restore copies a backup over its original file and returns the
// original path.
func Restore(backupPath string) (string, error) {
	original := strings.TrimSuffix(backupPath, BackupSuffix)
	if original == backupPath {
		return "", fmt.Errorf("%s is not a backup file", backupPath)
	}
	if err := copyFile(backupPath, original); err != nil {
		return "", fmt.Errorf("restoring %s: %w", original, err)
	}
	return original, nil
}

// WriteConverted writes generated code to dir, creating it if needed.
// The output name encodes the source file and line so multiple call
// sites from one file never collide.
func WriteConverted(dir, sourceFile string, line int, code string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	outPath := filepath.Join(dir, fmt.Sprintf("%s_L%d_harmony.py", base, line))
	if err := os.WriteFile(outPath, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
