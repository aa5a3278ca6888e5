// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	apperr "sqlrun/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
// Connection faults get the long-form explanation from FormatConnectError.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if apperr.Is(err, apperr.ConnectFailed) {
		return FormatConnectError(err)
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}
