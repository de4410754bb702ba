package writer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// RotateConfig configures file rotation.
type RotateConfig struct {
	Mode             RotateMode
	Filepath         string
	Filename         string
	FileExt          string
	TimeRotateConfig TimeRotateConfig
	SizeRotateConfig SizeRotateConfig
}

// TimeRotateConfig configures time-based rotation.
type TimeRotateConfig struct {
	MaxAge       int // hours to keep logs
	RotationTime int // hours between rotations
}

// SizeRotateConfig configures size-based rotation.
type SizeRotateConfig struct {
	MaxSize    int  // max size of a single log file (MB)
	MaxBackups int  // number of old log files to keep
	MaxAge     int  // days to keep old log files
	Compress   bool // compress rotated files
}

// File creates a file output writer for the configured rotation mode.
func File(config RotateConfig) (io.Writer, error) {
	switch config.Mode {
	case RotateModeTime:
		return timeRotateWriter(config)
	case RotateModeSize:
		return sizeRotateWriter(config)
	default:
		return nil, fmt.Errorf("unsupported rotate mode: %v", config.Mode)
	}
}

func (c *RotateConfig) fileFullPath() string {
	return c.fileFullPathWithFormat("")
}

func (c *RotateConfig) fileFullPathWithFormat(format string) string {
	var builder strings.Builder
	builder.Grow(len(c.Filename) + len(format) + len(c.FileExt) + 3)

	builder.WriteString(c.Filename)
	if format != "" {
		builder.WriteByte('.')
		builder.WriteString(format)
	}
	builder.WriteByte('.')
	builder.WriteString(c.FileExt)

	return filepath.Join(c.Filepath, builder.String())
}
