package history

import "errors"

var ErrHistoryNotFound = errors.New("medical history not found")
