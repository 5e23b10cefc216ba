package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Usage is the bit mask of the ways an allocation may be used.
type Usage uint32

const (
	UsageScript Usage = 1 << iota
	UsageGraphicsTexture
	UsageGraphicsVertex
	UsageGraphicsConstants
	UsageGraphicsRenderTarget
	UsageIOInput
	UsageIOOutput

	usageKnown = UsageScript | UsageGraphicsTexture | UsageGraphicsVertex |
		UsageGraphicsConstants | UsageGraphicsRenderTarget | UsageIOInput | UsageIOOutput

	usageIOInputAllowed = UsageIOInput | UsageGraphicsTexture | UsageScript
)

// Usage validation errors.
var (
	ErrUnknownUsage = errors.New("unknown usage specified")
	ErrInvalidUsage = errors.New("invalid usage combination")
)

var usageNames = []struct {
	u    Usage
	name string
}{
	{UsageScript, "script"},
	{UsageGraphicsTexture, "texture"},
	{UsageGraphicsVertex, "vertex"},
	{UsageGraphicsConstants, "constants"},
	{UsageGraphicsRenderTarget, "render_target"},
	{UsageIOInput, "io_input"},
	{UsageIOOutput, "io_output"},
}

func (u Usage) String() string {
	if u == 0 {
		return "none"
	}
	var parts []string
	for _, n := range usageNames {
		if u&n.u != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := u &^ usageKnown; rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// Check validates u and reports whether host writes are allowed. An error
// does not prevent creating the allocation; unknown bits are tolerated for
// forward compatibility and only reported.
func (u Usage) Check() (writeAllowed bool, err error) {
	writeAllowed = true
	if u&^usageKnown != 0 {
		err = fmt.Errorf("%w: %s", ErrUnknownUsage, u)
	}
	if u&UsageIOInput != 0 {
		writeAllowed = false
		if u&^usageIOInputAllowed != 0 {
			err = errors.Join(err, fmt.Errorf("%w: %s", ErrInvalidUsage, u))
		}
	}
	return writeAllowed, err
}

// single reports whether u is exactly one of the usages SyncAll accepts as
// a source.
func (u Usage) single() bool {
	switch u {
	case UsageScript, UsageGraphicsConstants, UsageGraphicsTexture, UsageGraphicsVertex:
		return true
	}
	return false
}
