package core

import (
	"fmt"

	"github.com/pcb-core/pcb/internal/pcberr"
)

func errInvalidLayer(idx int) error {
	return pcberr.Newf(pcberr.Argument, "no layer at index %d", idx)
}

func errNotFound(kind string) error {
	return pcberr.New(pcberr.NotFound, fmt.Sprintf("%s not found", kind))
}

func errLocked(kind string) error {
	return pcberr.New(pcberr.Locked, fmt.Sprintf("%s is locked", kind))
}
