// Package register holds the current fatigue level shared between the
// detection process and the snapshot writer.
//
// The register is a rendezvous point, not a queue: readers only ever see
// the latest value. Every read and every update goes through the same lock.
package register

import (
	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Register is the capability the detection side writes and the snapshot
// writer reads.
type Register interface {
	Read() (status.Code, error)
	Update(code status.Code) error
}

// UpdateLabel maps a detector label ("正常", "轻微疲劳", "瞌睡", or the
// English alias) onto the register. Unknown labels are rejected and leave
// it unchanged.
func UpdateLabel(r Register, text string) error {
	code, err := status.CodeForLabel(text)
	if err != nil {
		return err
	}
	return r.Update(code)
}

func validate(code status.Code) error {
	if _, err := status.ParseCode(int(code)); err != nil {
		return err
	}
	return nil
}
