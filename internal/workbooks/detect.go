package workbooks

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

const (
	mimeZip = "application/zip"
	mimeOLE = "application/x-ole-storage"
	mimeXLS = "application/vnd.ms-excel"
)

// detectContainer sniffs the file signature instead of trusting the
// extension. Only ZIP-based OOXML containers are readable; excelize rejects
// a ZIP that is not a workbook with its own error.
func detectContainer(path string) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return mcperr.Wrapf(mcperr.IOFailure, err, "cannot open workbook %s", path)
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(mimeZip) {
			return nil
		}
	}
	if mt.Is(mimeOLE) || mt.Is(mimeXLS) {
		return mcperr.Newf(mcperr.IOFailure, "%s is a legacy binary workbook (.xls); save it as .xlsx", path)
	}
	return mcperr.Newf(mcperr.IOFailure, "%s is not a workbook container (detected %s)", path, mt.String())
}
