package dataprocessing

import apierrors "ecdash/internal/errors"

// Warning is a per-item load failure (one file, one sheet) downgraded from an
// error per the propagation policy: the item is skipped, siblings continue,
// and the condition is surfaced to the user instead of halting the load.
type Warning struct {
	Code    string `json:"code"`
	Item    string `json:"item"`
	Message string `json:"message"`
}

// warningFrom converts a DataError into its reportable form.
func warningFrom(err *apierrors.DataError) Warning {
	return Warning{Code: err.Code, Item: err.Item, Message: err.Error()}
}
