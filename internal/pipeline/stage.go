package pipeline

import "fmt"

// Stage is one step of the forward pass.
type Stage int

// Forward pass stages, in execution order.
const (
	StageQuantize Stage = iota
	StageFC1
	StageFC1Requant
	StageFC2
	StageFC2Requant
	StageFC3
	StageArgmax
	numStages
)

var stageNames = [numStages]string{
	"quantize",
	"fc1",
	"fc1_requant_act",
	"fc2",
	"fc2_requant_act",
	"fc3",
	"argmax",
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if s >= 0 && s < numStages {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Stages returns every stage in execution order.
func Stages() []Stage {
	out := make([]Stage, numStages)
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}
