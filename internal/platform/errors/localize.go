package errors

import (
	stderrors "errors"

	"github.com/louisbranch/questline/internal/platform/errors/i18n"
)

// LocalizedMessage renders a player-facing message for err in locale. Errors
// without a code fall back to their own text.
func LocalizedMessage(err error, locale string) string {
	if err == nil {
		return ""
	}
	var target *Error
	if !stderrors.As(err, &target) {
		return err.Error()
	}
	return i18n.GetCatalog(locale).Format(string(target.Code), target.Metadata)
}
