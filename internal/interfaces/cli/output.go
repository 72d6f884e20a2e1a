package cli

import (
	"fmt"
	"io"

	sonic "github.com/bytedance/sonic"
)

type outputFormatter struct {
	format string
	w      io.Writer
}

// write renders data as indented JSON, or hands the writer to text otherwise.
func (f outputFormatter) write(data any, text func(w io.Writer) error) error {
	if f.format != FormatJSON {
		return text(f.w)
	}

	out, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(f.w, string(out))
	return err
}
