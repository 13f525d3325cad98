package utils

import "errors"

// Storage provider errors
var ErrStorageProviderNotFound = errors.New("storage provider not available")
