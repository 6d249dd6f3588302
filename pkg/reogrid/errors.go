package reogrid

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx format.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// LoadError represents an error while reading one part of a workbook.
type LoadError struct {
	SheetName string
	Component string // "cells", "merged_ranges", "names"
	Err       error
}

func (e *LoadError) Error() string {
	if e.SheetName == "" {
		return fmt.Sprintf("load error (%s): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("load error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError.
func NewLoadError(sheetName, component string, err error) *LoadError {
	return &LoadError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
