// Package docproc converts and inspects fax artifacts by shelling out
// to a Ghostscript-class binary. It owns no state beyond the
// configured binary path and default timeout.
package docproc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/faxbot/faxbot/internal/errors"
)

const defaultTimeout = 60 * time.Second

// Processor wraps the external conversion binaries behind the narrow
// operations the submit and inbound pipelines need. tiffBinPath is a
// separate binary (tiff2pdf, from libtiff) since Ghostscript has no
// native TIFF reader.
type Processor struct {
	binPath     string
	tiffBinPath string
	timeout     time.Duration
}

func New(binPath string) *Processor {
	if binPath == "" {
		binPath = "gs"
	}
	return &Processor{binPath: binPath, tiffBinPath: "tiff2pdf", timeout: defaultTimeout}
}

// WithTimeout returns a copy of p using the given per-call timeout,
// for callers (tests, admin tooling) that need a tighter bound.
func (p *Processor) WithTimeout(d time.Duration) *Processor {
	return &Processor{binPath: p.binPath, tiffBinPath: p.tiffBinPath, timeout: d}
}

// WithTIFFBin returns a copy of p using a different tiff2pdf binary path.
func (p *Processor) WithTIFFBin(binPath string) *Processor {
	return &Processor{binPath: p.binPath, tiffBinPath: binPath, timeout: p.timeout}
}

func (p *Processor) run(ctx context.Context, args ...string) ([]byte, error) {
	return p.runBin(ctx, p.binPath, args...)
}

func (p *Processor) runBin(ctx context.Context, bin string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.WithDetails(apperrors.ErrConversionFailed, "conversion timed out")
		}
		return nil, apperrors.WithDetails(apperrors.ErrConversionFailed, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// TextToPDF renders plain text to a PDF file at outPath. Ghostscript
// has no native text reader, so the text is first wrapped in a minimal
// PostScript program that the pdfwrite device then rasterizes.
func (p *Processor) TextToPDF(ctx context.Context, text string, outPath string) error {
	workDir, err := os.MkdirTemp("", "faxbot-docproc-*")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	psPath := filepath.Join(workDir, "input.ps")
	if err := os.WriteFile(psPath, []byte(textToPostScript(text)), 0o640); err != nil {
		return fmt.Errorf("failed to write intermediate postscript: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	_, err = p.run(ctx,
		"-q", "-dNOPAUSE", "-dBATCH", "-sDEVICE=pdfwrite",
		"-sOutputFile="+outPath,
		psPath,
	)
	return err
}

// PDFToTIFF rasterizes a PDF to a single multi-page group-4 TIFF
// suitable for fax transmission over SIP/T.38.
func (p *Processor) PDFToTIFF(ctx context.Context, pdfPath, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	_, err := p.run(ctx,
		"-q", "-dNOPAUSE", "-dBATCH", "-sDEVICE=tiffg4",
		"-r204x196",
		"-sOutputFile="+outPath,
		pdfPath,
	)
	return err
}

// TIFFToPDF converts a received group-4 TIFF (as produced by an
// Asterisk ReceiveFAX application) into a PDF for storage and
// retrieval. The inverse of PDFToTIFF, via a separate binary since
// Ghostscript cannot read TIFF input directly.
func (p *Processor) TIFFToPDF(ctx context.Context, tiffPath, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	_, err := p.runBin(ctx, p.tiffBinPath, "-o", outPath, tiffPath)
	return err
}

// CountPages returns the page count of a PDF, used as the local
// fallback when a provider callback doesn't report a page count.
func (p *Processor) CountPages(ctx context.Context, pdfPath string) (int, error) {
	script := fmt.Sprintf(`(%s) (r) file runpdfbegin pdfpagecount = quit`, pdfPath)

	out, err := p.run(ctx, "-q", "-dNODISPLAY", "-dNOSAFER", "-c", script)
	if err != nil {
		return 0, err
	}

	n, parseErr := strconv.Atoi(strings.TrimSpace(string(out)))
	if parseErr != nil {
		return 0, apperrors.WithDetails(apperrors.ErrConversionFailed, "could not parse page count")
	}
	return n, nil
}

func textToPostScript(text string) string {
	var b strings.Builder
	b.WriteString("%!PS-Adobe-3.0\n")
	b.WriteString("/Courier findfont 10 scalefont setfont\n")
	b.WriteString("72 720 moveto\n")
	b.WriteString("/ls 12 def\n")

	for _, line := range strings.Split(text, "\n") {
		b.WriteString("(")
		b.WriteString(escapePostScriptString(line))
		b.WriteString(") show\n")
		b.WriteString("0 ls neg rmoveto\n")
	}

	b.WriteString("showpage\n")
	return b.String()
}

func escapePostScriptString(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return replacer.Replace(s)
}
