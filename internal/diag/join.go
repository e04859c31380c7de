// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package diag

import (
	multierror "github.com/hashicorp/go-multierror"
)

// Join aggregates zero or more errors into a single error. It returns
// nil if errs is empty or contains only nil entries.
func Join(errs ...error) error {
	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
