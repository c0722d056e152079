package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/core/service"
)

// Exit codes by failure kind. Errors without a kind exit with 1.
var exitCodes = map[string]int{
	domain.ErrInvalidArgument.Kind:        2,
	domain.ErrInconsistentInput.Kind:      3,
	domain.ErrCapitalizationOverflow.Kind: 4,
	domain.ErrInvalidWarpTarget.Kind:      5,
	domain.ErrSegmentOverflow.Kind:        6,
	domain.ErrIOFailure.Kind:              7,
	domain.ErrLedgerLoad.Kind:             8,
	domain.ErrGenesisRead.Kind:            9,
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[domain.KindOf(err)]; ok {
		return code
	}
	return 1
}

// PrintError writes err to w as "error: <Kind> [<code>] <message>: <details>",
// followed by the failing merge stage when there is one.
func PrintError(w io.Writer, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		fmt.Fprintf(w, "error: %s\n", de.Error())
	} else {
		fmt.Fprintf(w, "error: %v\n", err)
	}

	var se *service.StageError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "stage: %s\n", se.Stage)
	}
}
