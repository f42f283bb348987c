package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/prodauth/internal/filex"
)

// PDF downloads the label of certificate id. Without an explicit path the
// file goes to the configured label directory, named after the serial when
// the certificate is in the local list.
func (a *App) PDF(ctx context.Context, id int64, path string) error {
	data, err := a.api.CertificatePDF(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	if path == "" {
		path = filepath.Join(a.config.LabelDir, labelFileName(a, id))
	}
	if err := filex.WriteFileAtomic(a.fs, path, data, 0o644); err != nil {
		a.println("Error: cannot save the label:", err)
		return err
	}

	a.printf("Saved %s (%d bytes)\n", path, len(data))
	return nil
}

func labelFileName(a *App, id int64) string {
	if c, ok := a.certificates.Get(id); ok && c.SerialNumber != "" {
		return fmt.Sprintf("certificate-%s.pdf", filepath.Base(filepath.Clean(c.SerialNumber)))
	}
	return fmt.Sprintf("certificate-%d.pdf", id)
}
