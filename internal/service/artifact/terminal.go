package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Terminal is the platform of the command line client: files are saved to OutDir,
// inline display prints the QR as text and printing shells out to PrintCommand.
type Terminal struct {
	OutDir       string
	Out          io.Writer
	PrintCommand string
}

func (t *Terminal) Name() string { return "terminal" }

func (t *Terminal) Save(_ context.Context, f File) (string, error) {
	if t.OutDir == "" {
		return "", errors.New("no output directory")
	}
	if err := os.MkdirAll(t.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(t.OutDir, filepath.Base(f.Name))
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", f.Name, err)
	}
	return path, nil
}

func (t *Terminal) ShowInline(_ context.Context, f File) error {
	if f.Link == "" {
		return errors.New("nothing to show")
	}
	text, err := QRText(f.Link)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(t.Out, "%s\n%s\n", text, f.Link)
	return err
}

func (t *Terminal) Print(ctx context.Context, f File) error {
	if t.PrintCommand == "" {
		return errors.New("printing disabled")
	}
	bin, err := exec.LookPath(t.PrintCommand)
	if err != nil {
		return fmt.Errorf("find %s: %w", t.PrintCommand, err)
	}

	tmp, err := os.CreateTemp("", "passit-*-"+filepath.Base(f.Name))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(f.Data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	out, err := exec.CommandContext(ctx, bin, tmp.Name()).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", t.PrintCommand, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// QRText renders link as a QR code made of half-block characters, two modules per line.
func QRText(link string) (string, error) {
	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	bits := q.Bitmap()

	var sb strings.Builder
	for y := 0; y < len(bits); y += 2 {
		for x := range bits[y] {
			top := bits[y][x]
			bottom := y+1 < len(bits) && bits[y+1][x]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
